package cmd

import (
	"fmt"
	"strings"
)

// deployReport accumulates the outcome of one deployment: which destination
// groups landed, which failed, and which items were refused by the protected
// path check. Partial success is reported explicitly, never hidden.
type deployReport struct {
	groups   int
	deployed []string
	failed   map[string]error
	skipped  []installItem
}

func newDeployReport() *deployReport {
	return &deployReport{failed: make(map[string]error)}
}

// err maps the report onto the error taxonomy: nil when every group landed,
// errTransfer when nothing did, errPartialDeploy otherwise.
func (r *deployReport) err() error {
	if len(r.failed) == 0 {
		return nil
	}
	if len(r.deployed) == 0 {
		return fmt.Errorf("all %d deployment groups failed: %w", len(r.failed), errTransfer)
	}
	names := make([]string, 0, len(r.failed))
	for d := range r.failed {
		names = append(names, d)
	}
	return fmt.Errorf("%d of %d groups failed (%s): %w", len(r.failed), r.groups, strings.Join(names, ", "), errPartialDeploy)
}

func (r *deployReport) summary() string {
	return fmt.Sprintf("deployed %d/%d groups, %d failed, %d items refused",
		len(r.deployed), r.groups, len(r.failed), len(r.skipped))
}

// deployItems turns the scanned install items into a completed remote
// deployment. Groups are processed strictly sequentially: the embedded target
// is resource constrained and sequential transfer keeps its log ordering
// deterministic. A failed group is logged and skipped; later groups still run.
func deployItems(t transport, items []installItem) *deployReport {
	report := newDeployReport()

	safe := make([]installItem, 0, len(items))
	for _, it := range items {
		if isProtectedPath(it.destination) {
			log.WithField("destination", it.destination).
				Errorf("refusing to deploy %s %s: %v", it.kind, it.name, errSafetyViolation)
			report.skipped = append(report.skipped, it)
			continue
		}
		safe = append(safe, it)
	}

	groups := groupItems(safe)
	report.groups = len(groups)
	for i, g := range groups {
		log.Infof("deploying group %d of %d: %s (%d items)", i+1, len(groups), g.destination, g.size())
		if err := deployOneGroup(t, g); err != nil {
			log.WithError(err).Errorf("group %s failed", g.destination)
			report.failed[g.destination] = err
			continue
		}
		report.deployed = append(report.deployed, g.destination)
	}

	log.Info(report.summary())
	return report
}

// deployOneGroup performs the per-destination sequence: idempotent mkdir,
// directory syncs, one batched upload for files and executables, then the
// executable permission fix-up.
func deployOneGroup(t transport, g deployGroup) error {
	out, code, err := runRemoteFunc(t, mkdirCommand(g.destination), cfgCmdTimeout)
	if err != nil {
		return fmt.Errorf("mkdir %s: %v: %w", g.destination, err, errTransfer)
	}
	if code != 0 {
		return fmt.Errorf("mkdir %s: %s: %w", g.destination, strings.TrimSpace(string(out)), errTransfer)
	}

	for _, d := range g.directories {
		if err := syncDirectory(t, d.source, d.remotePath()); err != nil {
			return err
		}
	}

	batch := make([]string, 0, len(g.files)+len(g.executables))
	for _, f := range g.files {
		batch = append(batch, f.source)
	}
	for _, e := range g.executables {
		batch = append(batch, e.source)
	}
	if err := uploadBatch(t, batch, g.destination); err != nil {
		return err
	}

	if len(g.executables) > 0 {
		paths := make([]string, 0, len(g.executables))
		for _, e := range g.executables {
			paths = append(paths, e.remotePath())
		}
		out, code, err := runRemoteFunc(t, chmodExecCommand(paths), cfgCmdTimeout)
		if err != nil {
			return fmt.Errorf("chmod in %s: %v: %w", g.destination, err, errTransfer)
		}
		if code != 0 {
			return fmt.Errorf("chmod in %s: %s: %w", g.destination, strings.TrimSpace(string(out)), errTransfer)
		}
	}
	return nil
}
