package glw

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/glr/internal/logger"
)

// Not exported by the 4.1 core bindings.
const (
	stackOverflow  = 0x0503
	stackUnderflow = 0x0504
)

// GLError is a GL error code raised by an operation.
type GLError struct {
	Op   string
	Code uint32
}

func (e *GLError) Error() string {
	return fmt.Sprintf("%s: %s (0x%04X)", e.Op, ErrorName(e.Code), e.Code)
}

// ErrorName returns the GL enum name of an error code.
func ErrorName(code uint32) string {
	switch code {
	case gl.NO_ERROR:
		return "GL_NO_ERROR"
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case stackOverflow:
		return "GL_STACK_OVERFLOW"
	case stackUnderflow:
		return "GL_STACK_UNDERFLOW"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	default:
		return "GL_UNKNOWN_ERROR"
	}
}

// maxDrainedErrors bounds the error flag loop; a lost context reports forever.
const maxDrainedErrors = 16

// CheckError reads and clears the GL error flags. The first pending error is
// logged and returned as a *GLError; nil means no error was pending.
func CheckError(op string) error {
	return checkCodes(op, gl.GetError)
}

func checkCodes(op string, next func() uint32) error {
	var first *GLError
	for range maxDrainedErrors {
		code := next()
		if code == gl.NO_ERROR {
			break
		}
		if first == nil {
			first = &GLError{Op: op, Code: code}
		}
	}
	if first == nil {
		return nil
	}
	logger.Error("gl error",
		zap.String("op", op),
		zap.String("error", ErrorName(first.Code)),
	)
	return first
}
