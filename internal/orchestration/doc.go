// Package orchestration runs one reconstruction end to end: it selects the
// problem, starts an in-process cluster or this process's share of a TCP
// cluster, feeds progress to a reporter and hands the result to a
// presenter. The ProgressReporter and ResultPresenter interfaces keep the
// terminal concerns in the cli package.
package orchestration
