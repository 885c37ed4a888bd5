// Package worker implements the worker-side simulation driver: halo
// exchange, periodic redistribution, and the iteration loop that composes
// them with the local quadtree and the force/integrator kernels. Every
// function here is threaded an explicit Context and State rather than
// reading package-level globals, per the design note that pid/nproc/radius/
// dim are logically constants after startup, not mutable process state.
package worker

import (
	"github.com/sirupsen/logrus"

	"github.com/partsim/partsim/internal/config"
	"github.com/partsim/partsim/internal/kernel"
	"github.com/partsim/partsim/internal/transport"
)

// Context bundles everything a worker needs that never changes across
// iterations: its transport handle, cluster-wide configuration, logger, and
// the force/integrate kernels it was configured with.
type Context struct {
	Handle    *transport.WorkerHandle
	Cfg       config.ClusterConfig
	Log       *logrus.Entry
	Force     kernel.Force
	Integrate kernel.Integrate
}

// PID returns the worker's index in [0, Cfg.WorkerCount).
func (c *Context) PID() int {
	return c.Handle.PID()
}

// NewContext builds a Context for one worker, deriving a per-worker logger
// so log lines are attributable without any worker touching another's
// state.
func NewContext(h *transport.WorkerHandle, cfg config.ClusterConfig, log *logrus.Logger, force kernel.Force, integrate kernel.Integrate) *Context {
	return &Context{
		Handle:    h,
		Cfg:       cfg,
		Log:       log.WithField("pid", h.PID()),
		Force:     force,
		Integrate: integrate,
	}
}
