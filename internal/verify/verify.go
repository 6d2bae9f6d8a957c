package verify

import (
	"context"
	"fmt"
	"sync"
)

//go:generate mockgen -source=verify.go -destination=verify_mock.go -package=verify

// Verification is a positive biometric match reported by the remote service.
type Verification struct {
	Name       string
	Confidence float64
}

// FaceVerifier is the remote side of the gate. VerifyFace submits a captured
// frame; FaceStatus reports a verification carried over from a prior session,
// or nil when there is none.
type FaceVerifier interface {
	VerifyFace(ctx context.Context, image []byte) (*Verification, error)
	FaceStatus(ctx context.Context) (*Verification, error)
}

// FrameSource produces a single JPEG frame from the capture device.
type FrameSource interface {
	Frame(ctx context.Context) ([]byte, error)
}

// State is the gate's current answer: verified or not, plus who and how
// confidently when it is.
type State struct {
	Verified   bool
	Name       string
	Confidence float64
}

// Gate tracks whether the operator has passed face verification for this
// session. Verification is granted at most once and never revoked; a failed
// capture before that simply leaves the gate closed.
type Gate struct {
	verifier FaceVerifier
	frames   FrameSource
	onChange func(State)

	mu    sync.Mutex
	state State
}

// New builds a gate. onChange fires on every transition to verified and may
// be nil.
func New(verifier FaceVerifier, frames FrameSource, onChange func(State)) *Gate {
	return &Gate{verifier: verifier, frames: frames, onChange: onChange}
}

// Resume consults the remote verification status once at startup so a prior
// session's verification is honored without a fresh capture. A negative
// status is not an error.
func (g *Gate) Resume(ctx context.Context) error {
	v, err := g.verifier.FaceStatus(ctx)
	if err != nil {
		return fmt.Errorf("checking face status: %w", err)
	}

	if v == nil {
		return nil
	}

	g.grant(*v)

	return nil
}

// Capture grabs a frame and submits it for verification. When the gate is
// already open the capture is skipped. Camera failures and negative matches
// keep their distinct error identities for the caller to report.
func (g *Gate) Capture(ctx context.Context) (State, error) {
	g.mu.Lock()
	if g.state.Verified {
		state := g.state
		g.mu.Unlock()

		return state, nil
	}
	g.mu.Unlock()

	frame, err := g.frames.Frame(ctx)
	if err != nil {
		return g.State(), fmt.Errorf("capturing frame: %w", err)
	}

	v, err := g.verifier.VerifyFace(ctx, frame)
	if err != nil {
		return g.State(), fmt.Errorf("verifying face: %w", err)
	}

	g.grant(*v)

	return g.State(), nil
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *Gate) grant(v Verification) {
	g.mu.Lock()
	if g.state.Verified {
		g.mu.Unlock()
		return
	}

	g.state = State{Verified: true, Name: v.Name, Confidence: v.Confidence}
	state := g.state
	g.mu.Unlock()

	if g.onChange != nil {
		g.onChange(state)
	}
}
