// Package voicekiterr defines the error taxonomy shared across the
// synthesis pipeline, so callers can branch on errors.As(err, *Error)
// without string-matching messages.
package voicekiterr

import "fmt"

// Kind identifies which failure mode an Error represents.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotLoadedOpenjtalkDict
	KindGPUSupport
	KindGetSupportedDevices
	KindLoadModelOpenZipFile
	KindLoadModelReadZipEntry
	KindLoadModelAlreadyLoaded
	KindStyleAlreadyLoaded
	KindLoadModelInvalidModelData
	KindInvalidModelID
	KindInvalidStyleID
	KindUnloadedModel
	KindInferenceFailed
	KindExtractFullContextLabel
	KindParseKana
)

func (k Kind) String() string {
	switch k {
	case KindNotLoadedOpenjtalkDict:
		return "not_loaded_openjtalk_dict"
	case KindGPUSupport:
		return "gpu_support"
	case KindGetSupportedDevices:
		return "get_supported_devices"
	case KindLoadModelOpenZipFile:
		return "load_model_open_zip_file"
	case KindLoadModelReadZipEntry:
		return "load_model_read_zip_entry"
	case KindLoadModelAlreadyLoaded:
		return "load_model_already_loaded"
	case KindStyleAlreadyLoaded:
		return "style_already_loaded"
	case KindLoadModelInvalidModelData:
		return "load_model_invalid_model_data"
	case KindInvalidModelID:
		return "invalid_model_id"
	case KindInvalidStyleID:
		return "invalid_style_id"
	case KindUnloadedModel:
		return "unloaded_model"
	case KindInferenceFailed:
		return "inference_failed"
	case KindExtractFullContextLabel:
		return "extract_full_context_label"
	case KindParseKana:
		return "parse_kana"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with a human message and an optional cause, so
// callers can use errors.Is/errors.As on the Kind while still getting
// %w-chained diagnostics.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, voicekiterr.New(KindInvalidStyleID, "", nil)) works as
// a kind-equality check.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return other.Kind == e.Kind
}

// New builds an *Error for the given Kind, formatting Msg from format/args.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error for the given Kind around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinel returns an *Error usable as a comparison target for errors.Is,
// e.g. errors.Is(err, voicekiterr.Sentinel(KindInvalidStyleID)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
