package core

import (
	"errors"
)

var (
	ErrShaderBuild           = errors.New("shader program failed to build")
	ErrResourceCreation      = errors.New("gpu resource allocation failed")
	ErrUnknownTexture        = errors.New("unknown texture handle")
	ErrIncompleteFramebuffer = errors.New("framebuffer incomplete")
	ErrConfigInvalid         = errors.New("invalid configuration")
	ErrDeviceLost            = errors.New("gpu device lost or not initialized")
	ErrUnknown               = errors.New("unknown")
)
