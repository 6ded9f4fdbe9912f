package providers

import (
	"fmt"
	"lifewrapped/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors.OneError()
	}

	cd := cv.conf.Recording.ChunkDuration
	if cd < structures.MinChunkDuration || cd > structures.MaxChunkDuration {
		return fmt.Errorf("recording.chunkDuration must be between %s and %s, got %s",
			structures.MinChunkDuration, structures.MaxChunkDuration, cd)
	}

	return nil
}
