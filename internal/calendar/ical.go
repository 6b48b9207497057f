package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"calendar-api/internal/store"
)

const (
	productID       = "-//calendar-api//events//EN"
	floatingLayout  = "20060102T150405"
	dateValueLayout = "20060102"
	clockLayout     = "15:04"
)

// WriteICS renders event documents as a VCALENDAR. Events without a
// parseable date are skipped. Start and end times are emitted as floating
// local times; when the start time does not parse the event becomes an
// all-day entry.
func WriteICS(w io.Writer, events []store.Document, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, doc := range events {
		ev, ok := toVEvent(doc, stamp)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	// The encoder rejects a VCALENDAR without components.
	if len(cal.Children) == 0 {
		_, err := fmt.Fprintf(w, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:%s\r\nEND:VCALENDAR\r\n", productID)
		return err
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toVEvent(doc store.Document, stamp time.Time) (*ical.Event, bool) {
	day, err := time.Parse(DateLayout, stringField(doc, "date"))
	if err != nil {
		return nil, false
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, stringField(doc, store.IDField)+"@calendar")
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	if title := stringField(doc, "title"); title != "" {
		ev.Props.SetText(ical.PropSummary, title)
	}
	if category := stringField(doc, "category"); category != "" {
		ev.Props.SetText(ical.PropCategories, category)
	}

	start, ok := clockOn(day, stringField(doc, "startTime"))
	if !ok {
		setDate(ev.Props, ical.PropDateTimeStart, day)
		setDate(ev.Props, ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
		return ev, true
	}

	setFloating(ev.Props, ical.PropDateTimeStart, start)
	if end, ok := clockOn(day, stringField(doc, "endTime")); ok && end.After(start) {
		setFloating(ev.Props, ical.PropDateTimeEnd, end)
	}
	return ev, true
}

func clockOn(day time.Time, clock string) (time.Time, bool) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), true
}

func setFloating(props ical.Props, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingLayout)
	props.Set(prop)
}

func setDate(props ical.Props, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.SetValueType(ical.ValueDate)
	prop.Value = t.Format(dateValueLayout)
	props.Set(prop)
}

func stringField(doc store.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}
