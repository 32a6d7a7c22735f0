package session

import "context"

// PermissionState is the camera acquisition state a device reports.
type PermissionState string

const (
	PermissionChecking    PermissionState = "checking"
	PermissionPrompt      PermissionState = "prompt"
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
	PermissionUnavailable PermissionState = "unavailable"
)

// Camera is the device-permission collaborator a session consults before
// scanning starts. Device-level failures (no camera, camera busy) surface
// as PermissionUnavailable.
type Camera interface {
	// Status reports the current permission state without prompting.
	Status(ctx context.Context) PermissionState

	// Request prompts the user and returns the resulting state. Only
	// meaningful from PermissionPrompt.
	Request(ctx context.Context) PermissionState
}

// GrantedCamera satisfies Camera for surfaces with no real camera, such as
// manual-entry terminals.
type GrantedCamera struct{}

func (GrantedCamera) Status(context.Context) PermissionState  { return PermissionGranted }
func (GrantedCamera) Request(context.Context) PermissionState { return PermissionGranted }

