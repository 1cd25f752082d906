package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldAttempt         = "attempt"
	FieldChannel         = "channel"
	FieldDurationMs      = "duration-ms"
	FieldEndpoint        = "endpoint"
	FieldError           = "error"
	FieldGoodsID         = "goods-id"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldJob             = "job"
	FieldMerchantID      = "merchant-id"
	FieldMessageID       = "message-id"
	FieldOffset          = "offset"
	FieldPrice           = "price"
	FieldProxy           = "proxy"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldRoute           = "route"
	FieldStack           = "stack"
	FieldTaskID          = "task-id"
	FieldTitle           = "title"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
)
