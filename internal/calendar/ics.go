package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// FeedName is the calendar name advertised to subscribing clients.
const FeedName = "SVIT Academic Calendar"

// Feed renders events as an iCalendar document. Events are all-day; the
// exclusive DTEND is the day after End.
func Feed(events []Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SVIT College//Curriculum Portal//EN")
	cal.SetXWRCalName(FeedName)
	for _, e := range events {
		ev := cal.AddEvent(fmt.Sprintf("calendar-event-%d@svit.edu", e.ID))
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Title)
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		ev.SetAllDayStartAt(e.Start)
		ev.SetAllDayEndAt(e.End.AddDate(0, 0, 1))
		ev.AddProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(e.Type)))
		if len(e.Links) > 0 {
			ev.SetURL(e.Links[0].URL)
		}
	}
	return cal.Serialize()
}
