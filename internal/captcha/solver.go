package captcha

import "context"

// NotSolved is the sentinel the solving service returns when it could not
// read the challenge image.
const NotSolved = "Not solved"

// Solver resolves a CAPTCHA challenge image into its text. Implementations
// wrap an external OCR collaborator; the pipeline only depends on this
// contract.
type Solver interface {
	// Solve returns the solved text for the image at the given link, or
	// NotSolved / an error when the challenge could not be resolved.
	Solve(ctx context.Context, imageLink string) (string, error)
}
