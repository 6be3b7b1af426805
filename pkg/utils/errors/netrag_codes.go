package errors

// netrag 服务代码: 20 (业务服务范围 20-79)。
// 错误码格式: AABBCCC — AA=20 (netrag), BB=类别代码, CCC=序号。
//
// The eight kinds map 1:1 onto the taxonomy in SPEC_FULL.md §7; each has one
// generic Errno registered here plus, where a component needs a more
// specific message, component-level wrappers built with WithMessage(f).
const (
	// ServiceNetRAG is this service's AA code.
	ServiceNetRAG = 20
)

var (
	ErrInvalidInput        = Register(New(MakeCode(ServiceNetRAG, CategoryRequest, 1), KindInvalidInput, "invalid input"))
	ErrNotFound            = Register(New(MakeCode(ServiceNetRAG, CategoryResource, 1), KindNotFound, "not found"))
	ErrValidation          = Register(New(MakeCode(ServiceNetRAG, CategoryRequest, 2), KindValidationError, "validation failed"))
	ErrUpstreamUnavailable = Register(New(MakeCode(ServiceNetRAG, CategoryNetwork, 1), KindUpstreamUnavailable, "upstream unavailable"))
	ErrTimeout             = Register(New(MakeCode(ServiceNetRAG, CategoryTimeout, 1), KindTimeout, "deadline exceeded"))
	ErrCanceled            = Register(New(MakeCode(ServiceNetRAG, CategoryTimeout, 2), KindCanceled, "canceled"))
	ErrIncompatibleState   = Register(New(MakeCode(ServiceNetRAG, CategoryConfig, 1), KindIncompatibleState, "incompatible persisted state"))
	ErrInternal            = Register(New(MakeCode(ServiceNetRAG, CategoryInternal, 1), KindInternal, "internal error"))
)

// Component-specific errors, built from the generic kinds above.
var (
	ErrDocumentTooShort  = ErrValidation.WithMessage("document title or body below the minimum length")
	ErrDocumentNotFound  = ErrNotFound.WithMessage("document not found")
	ErrDeviceNotFound    = ErrNotFound.WithMessage("device not found")
	ErrSchemaNotFound    = ErrNotFound.WithMessage("schema not found")
	ErrRuleNotMatched    = ErrInternal.WithMessage("no health rule matched the device kind")
	ErrEmbeddingFailed   = ErrUpstreamUnavailable.WithMessage("embedding provider unavailable")
	ErrVectorStoreFailed = ErrUpstreamUnavailable.WithMessage("vector store unavailable")
	ErrDataSourceFailed  = ErrUpstreamUnavailable.WithMessage("device data source unavailable")
	ErrLLMUnavailable    = ErrUpstreamUnavailable.WithMessage("language model unavailable")
	ErrQueryTimeout      = ErrTimeout.WithMessage("query orchestration deadline exceeded")
)

// KindOf returns the taxonomy Kind for err, defaulting to KindInternal for any
// error that is not an *Errno.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Errno); ok {
		return e.Kind
	}
	return KindInternal
}
