// Package frame drives a simulation one paint at a time.
//
// A Scheduler hands out one-shot "run on the next paint" requests. The
// Animator chains those requests into a frame loop (step, draw, present,
// request again) and owns the lifecycle around it: resize and theme
// changes tear the chain down and rebuild it, and Stop cancels the pending
// request before the surface is released so that no frame draws after
// teardown.
//
//	sched := frame.NewTicker(60)
//	defer sched.Close()
//	anim := frame.New(sched, acquire, effect.Drift, opts)
//	err := anim.Run(ctx)
package frame
