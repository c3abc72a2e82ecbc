package ilerr

// Reporter receives language errors during typing.
//
// Callers that type speculatively snapshot ErrorCount before typing and ask
// WasSilent afterwards, to learn whether that typing produced any error
type Reporter interface {
	Report(err IleError)
	ErrorCount() int
	// WasSilent reports whether no error was recorded since the reporter held since errors
	WasSilent(since int) bool
	Errors() []IleError
}

var _ Reporter = (*StoreReporter)(nil)

// StoreReporter keeps every reported error in memory
type StoreReporter struct {
	errs Errors
	// onReport, when set, is invoked for every error
	onReport func(IleError)
}

func NewStoreReporter() *StoreReporter {
	return &StoreReporter{}
}

// NewForwardingReporter returns a reporter that stores errors and also forwards each to onReport
func NewForwardingReporter(onReport func(IleError)) *StoreReporter {
	return &StoreReporter{onReport: onReport}
}

func (r *StoreReporter) Report(err IleError) {
	r.errs.With(err)
	if r.onReport != nil {
		r.onReport(err)
	}
}

func (r *StoreReporter) ErrorCount() int {
	return len(r.errs.Errors())
}

func (r *StoreReporter) WasSilent(since int) bool {
	return r.ErrorCount() <= since
}

func (r *StoreReporter) Errors() []IleError {
	return r.errs.Errors()
}
