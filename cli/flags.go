package cli

var (
	verbose bool

	// gesture tuning file shared by server and replay commands
	thresholdsPath string

	// for replay command
	replayFile  string
	replayTrace bool

	// for io commands
	ioTotal           int
	ioIndex           int
	ioViewportWidth   float64
	ioMoves           int
	ioSwipeDurationMs int
	ioPinchDurationMs int
	ioTapCount        int
	ioTapIntervalMs   int
	ioPinchFrom       float64
	ioPinchTo         float64

	// for gallery commands
	galleryURL       string
	galleryImageID   int
	galleryThumbnail bool
	galleryOutput    string
)
