package cmd

import "errors"

// Error taxonomy for the deploy/debug flows. Callers classify with errors.Is;
// lower layers wrap these sentinels with context via fmt.Errorf and %w.
var (
	// errConfiguration marks missing or unusable user input (no build tree,
	// no manifests, missing host). Not retried automatically.
	errConfiguration = errors.New("configuration error")

	// errAuth marks rejected SSH credentials. Surfaced immediately, no retry.
	errAuth = errors.New("authentication failed")

	// errConnection marks an unreachable or refusing host. The user may
	// re-invoke once the target is back.
	errConnection = errors.New("connection failed")

	// errTransfer marks a failed upload for one file or group; the
	// orchestrator logs it and continues with the remaining groups.
	errTransfer = errors.New("transfer failed")

	// errRemoteProcess marks a debug server that failed to start or died
	// before verification.
	errRemoteProcess = errors.New("remote process error")

	// errSafetyViolation marks a deployment destination inside the protected
	// path set. Always refused, never overridable.
	errSafetyViolation = errors.New("protected destination refused")

	// errPartialDeploy is returned by deploy when at least one group failed
	// while others succeeded. Execute maps it to exit code 2.
	errPartialDeploy = errors.New("deployment partially failed")
)
