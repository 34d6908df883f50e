package record

import "fmt"

// PageID identifies one page of one table.
type PageID struct {
	TableID int
	PageNo  int
}

func (p PageID) String() string {
	return fmt.Sprintf("%d:%d", p.TableID, p.PageNo)
}

// RecordID (tuple location) inside of heap file:
// PageID: page holding the tuple
// Slot  : slot index of page
type RecordID struct {
	PageID PageID
	Slot   int
}
