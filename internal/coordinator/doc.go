// Package coordinator decides when each configured build action fires. It
// tracks the Before/After state every project has reached, gates actions on
// their ordering requirements, runs deferred Pre actions when their moment
// arrives, and handles log-triggered actions on a separate serialized path.
// It is structured into small files by concern:
//
//   - coordinator.go: Coordinator type, constructor, OnProject, Reset.
//   - config.go: Config and defaults applied by New.
//   - types.go: collaborator interfaces, Incoming, Outcome, Command.
//   - order.go: isReached / isExecute readiness predicates.
//   - dispatch.go: table of per-category policies and the generic item loop.
//   - bind.go: host entry points (BindPre, BindPost, BindCancel, BindBuildRaw,
//     BindProjectPre/Post, BindCommand).
//   - deferred.go: sweep of deferred Pre actions.
//   - logging.go: log notification queue and its consumer loop.
//   - status_report.go: Snapshot/Status reporting.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: prometheus collectors.
//
// Every mutation of the project map, the current pointer and the status slots
// happens under one coordinator-wide mutex, from the synchronous host hooks
// and from the logging loop alike. Action errors never escape: they are
// logged and recorded as Fail for the item that raised them.
package coordinator
