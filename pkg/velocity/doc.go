// Package velocity counts board activity: cards created, removed and
// finished per day, as running totals.
//
// Quick start:
//
//	c, err := velocity.New(
//	    velocity.WithFinishedLists("Done"),
//	    velocity.WithExcludedLists("Reference"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for row, err := range c.Count(velocity.DecodeActions(ctx, f)) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(row.Date, row.Create, row.Remove, row.Finish)
//	}
//
// A Counter holds only compiled rules and is safe for concurrent use.
package velocity
