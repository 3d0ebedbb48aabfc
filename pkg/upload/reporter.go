package upload

// Reporter receives diagnostic reports about anomalies seen while uploading.
// Implementations decide how reports are stored or transmitted.
type Reporter interface {
	// ReportException records an anomaly worth investigating.
	ReportException(err error)

	// ReportExceptionWithSuppress records a low-severity anomaly that the
	// implementation may drop or rate limit.
	ReportExceptionWithSuppress(err error)
}

// NopReporter drops every report.
type NopReporter struct{}

func (NopReporter) ReportException(error)             {}
func (NopReporter) ReportExceptionWithSuppress(error) {}
