// Package process runs editor subprocesses and classifies their outcome.
//
// A Runner resolves and starts one child per Invocation, captures its
// standard output and standard error in memory, and blocks until it exits.
// Children are tracked by a Supervisor so that every process is reaped on
// every exit path:
//
//	runner := process.NewRunner()
//	defer runner.Supervisor().Shutdown(time.Second)
//
//	res, err := runner.Run(ctx, process.Invocation{
//	    Path: "nvim",
//	    Args: []string{"--headless", "-u", "NONE", "-c", "qa!"},
//	})
//
// No timeout is applied. Cancel ctx to bound latency; the child's process
// group is killed and still waited on.
//
// # Exit codes
//
// Classify turns a Result into a decision. Exit code 0 is success. Some vim
// builds exit with 1 after a successful dump (for instance when the config
// printed an error in silent Ex mode), so exit code 1 is tolerated when
// stdout still holds a decodable value. Every other code is an *ExitError.
//
// # Thread Safety
//
// Runner, Supervisor and Process are safe for concurrent use.
package process
