package velocity

// Row is one date's running totals.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Row struct {
	Date   string `json:"date"`   // YYYY-MM-DD
	Create int    `json:"create"` // cards created or moved onto the board so far
	Remove int    `json:"remove"` // cards deleted or moved off the board so far
	Finish int    `json:"finish"` // cards closed or moved while on a finished list so far
}
