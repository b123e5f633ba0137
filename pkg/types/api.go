package types

// ResultResponse is returned by every build hook endpoint.
type ResultResponse struct {
	// example: success
	Result string `json:"result" example:"success"`
}

// CommandResponse is returned by POST /v1/commands/{direction}.
type CommandResponse struct {
	// example: success
	Result string `json:"result" example:"success"`
	// True when a matching Pre filter asked the host to cancel the command.
	Cancel bool `json:"cancel"`
}

// PostRequest is the body of POST /v1/build/post.
type PostRequest struct {
	Succeeded bool `json:"succeeded"`
}

// RawRequest carries captured build output for POST /v1/build/raw.
type RawRequest struct {
	Data string `json:"data"`
}

// ProjectAfterRequest is the body of POST /v1/projects/{project}/after.
type ProjectAfterRequest struct {
	Success bool `json:"success"`
}

// CommandRequest identifies a host command occurrence.
type CommandRequest struct {
	// example: {5EFC7975-14BC-11CF-9B2B-00AA00573819}
	GUID string `json:"guid"`
	// example: 882
	ID        int     `json:"id"`
	CustomIn  *string `json:"custom_in,omitempty"`
	CustomOut *string `json:"custom_out,omitempty"`
}

// LogRequest forwards one host log message to the logging path.
type LogRequest struct {
	Message string `json:"message"`
	// zerolog level name; empty means info.
	// example: warn
	Level string `json:"level,omitempty" example:"warn"`
}

// EvalRequest is the body of POST /v1/eval.
type EvalRequest struct {
	// example: #[var ver = 1.2]#[var ver]
	Expression string `json:"expression"`
}

// EvalResponse carries the evaluated text.
type EvalResponse struct {
	Result string `json:"result"`
}

// HostActionsRequest toggles whether this host instance may run actions.
type HostActionsRequest struct {
	Allow bool `json:"allow"`
}

// VariablesResponse wraps GET /v1/variables.
type VariablesResponse struct {
	Variables []Variable `json:"variables"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /v1/status.
type StatusResponse struct {
	// Session id, regenerated on every successful reset.
	Session string `json:"session"`
	// Global enable switch of the event configuration.
	Enabled bool `json:"enabled"`
	// False while another host instance owns the build.
	AllowActions bool `json:"allow_actions"`
	// Most recent project transition, if any.
	Current    *ProjectState    `json:"current,omitempty"`
	Projects   []ProjectState   `json:"projects"`
	Categories []CategoryStatus `json:"categories"`
	// Pre actions still waiting for their project transition.
	Deferred int `json:"deferred"`
	// Text of the last log message handled by the logging path.
	LastLog string `json:"last_log,omitempty"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
