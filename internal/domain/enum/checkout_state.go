package enum

// CheckoutState is the position of a checkout orchestrator in its run
type CheckoutState string

const (
	CheckoutIdle                 CheckoutState = "idle"
	CheckoutValidating           CheckoutState = "validating"
	CheckoutCreatingOrder        CheckoutState = "creating_order"
	CheckoutGeneratingDocuments  CheckoutState = "generating_documents"
	CheckoutDownloadingDocuments CheckoutState = "downloading_documents"
	CheckoutDone                 CheckoutState = "done"
	CheckoutFailed               CheckoutState = "failed"
)

// IsTerminal reports whether a run has finished in this state
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutDone || s == CheckoutFailed
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}

// CheckoutStage names the step a checkout failure or warning belongs to
type CheckoutStage string

const (
	StageValidation CheckoutStage = "validation"
	StageOrder      CheckoutStage = "order"
	StageDocuments  CheckoutStage = "documents"
	StageDownload   CheckoutStage = "download"
)

func (s CheckoutStage) String() string {
	return string(s)
}
