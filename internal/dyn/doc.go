// Package dyn provides the core primitives for ODE parameter estimation.
//
// The package defines the types shared by the forward simulator and the
// inference driver:
//
//   - [State]: system state vector
//   - [Params]: model parameter vector
//   - [System]: interface for ODE models (du/dt = f(u, p, t))
//   - [Problem]: immutable (model, initial state, time span, parameters) tuple
//
// It also carries the error taxonomy of the pipeline as sentinel errors
// ([ErrModelEval], [ErrIntegrationFailure], [ErrPriorCountMismatch],
// [ErrBackendFailure]) so callers can classify failures with errors.Is.
//
// # Example
//
//	sys := model.NewPendulum()
//	prob, _ := dyn.NewProblem(sys, dyn.State{1.0, 0.1}, 0, 10, dyn.Params{1.0, 2.5})
//	traj, _ := sim.Solve(ctx, prob, sim.DefaultOptions())
package dyn
