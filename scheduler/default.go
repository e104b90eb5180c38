package scheduler

// Default is the process-wide service instance, wired in main the same way
// the DB handle is. Controllers call it directly.
var Default *Service
