// Package pipeline provides a framework for executing link check steps in
// sequence.
//
// A link check moves through fixed stages: discovery of link candidates on
// the seed page (or feed), frontier construction, concurrent verification,
// consistency analysis and ranking. Each stage is implemented as a Step that
// receives the current model.Run and extends it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running checks
//
// Concurrency lives inside the verify step (see package verifier); the
// pipeline itself runs steps one after another.
package pipeline
