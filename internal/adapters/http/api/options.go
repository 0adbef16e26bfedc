package api

import "github.com/okian/podium/pkg/logger"

// defaultMaxUploadBytes bounds a multipart batch upload.
const defaultMaxUploadBytes = 64 << 20

type serverConfig struct {
	maxUploadBytes int64
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

// WithMaxUploadBytes bounds the size of a batch upload.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
