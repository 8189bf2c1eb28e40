package app

import (
	"fmt"

	"go.uber.org/zap"

	"hookforge/internal/gateway/config"
	artifactrepo "hookforge/internal/gateway/repository/artifact"
)

// initArtifactStore uses S3 when configured and falls back to memory.
func initArtifactStore(cfg *config.Config, logger *zap.Logger) (artifactrepo.Store, error) {
	if !cfg.Artifact.CanUseS3() {
		logger.Info("artifact store: memory")
		return artifactrepo.NewMemoryStore(), nil
	}
	s3Cfg := artifactrepo.S3Config{
		Endpoint:  cfg.Artifact.Endpoint,
		Region:    cfg.Artifact.Region,
		AccessKey: cfg.Artifact.AccessKey,
		SecretKey: cfg.Artifact.SecretKey,
		Bucket:    cfg.Artifact.Bucket,
		UseSSL:    cfg.Artifact.UseSSL,
		URLExpiry: cfg.Artifact.URLExpiry,
	}
	store, err := artifactrepo.NewS3Store(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact s3 store: %w", err)
	}
	logger.Info("artifact store: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
	return store, nil
}
