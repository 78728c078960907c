package alarm

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
)

// Field names of the messages carried in structpb.Struct.
const (
	fieldID        = "id"
	fieldTime      = "time"
	fieldTone      = "tone"
	fieldRinging   = "ringing"
	fieldNow       = "now"
	fieldScheduled = "scheduled"
	fieldType      = "type"
	fieldAt        = "at"
	fieldAlarm     = "alarm"
	fieldCount     = "count"
	fieldKind      = "kind"
	fieldMessage   = "message"
)

// errMalformed is returned when a message lacks a field or holds a wrong kind of value.
var errMalformed = errors.New("malformed message")

// AddRequest builds the AddAlarm request.
func AddRequest(at, tone string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldTime: structpb.NewStringValue(at),
		fieldTone: structpb.NewStringValue(tone),
	}}
}

// parseAddRequest extracts the raw time and tone of an AddAlarm request.
// Both are validated by the service, so missing fields come out empty.
func parseAddRequest(req *structpb.Struct) (string, string) {
	fields := req.GetFields()

	return fields[fieldTime].GetStringValue(), fields[fieldTone].GetStringValue()
}

// AlarmToProto converts an alarm to its wire form.
func AlarmToProto(a domain.Alarm) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:   structpb.NewStringValue(a.ID.String()),
		fieldTime: structpb.NewStringValue(a.Time.String()),
		fieldTone: structpb.NewStringValue(a.Tone),
	}}
}

// AlarmFromProto converts the wire form back to an alarm.
func AlarmFromProto(msg *structpb.Struct) (domain.Alarm, error) {
	fields := msg.GetFields()

	id, err := uuid.Parse(fields[fieldID].GetStringValue())
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("%w: alarm id: %w", errMalformed, err)
	}

	at, err := domain.ParseTimeOfDay(fields[fieldTime].GetStringValue())
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("%w: alarm time: %w", errMalformed, err)
	}

	return domain.Alarm{
		ID:   id,
		Time: at,
		Tone: fields[fieldTone].GetStringValue(),
	}, nil
}

// AlarmsToProto converts a list of alarms.
func AlarmsToProto(list []domain.Alarm) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(list))
	for _, a := range list {
		values = append(values, structpb.NewStructValue(AlarmToProto(a)))
	}

	return &structpb.ListValue{Values: values}
}

// AlarmsFromProto converts a list of alarms back.
func AlarmsFromProto(msg *structpb.ListValue) ([]domain.Alarm, error) {
	list := make([]domain.Alarm, 0, len(msg.GetValues()))

	for _, v := range msg.GetValues() {
		a, err := AlarmFromProto(v.GetStructValue())
		if err != nil {
			return nil, err
		}

		list = append(list, a)
	}

	return list, nil
}

// StringsToProto converts a list of strings.
func StringsToProto(list []string) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(list))
	for _, s := range list {
		values = append(values, structpb.NewStringValue(s))
	}

	return &structpb.ListValue{Values: values}
}

// StringsFromProto converts a list of strings back.
func StringsFromProto(msg *structpb.ListValue) []string {
	list := make([]string, 0, len(msg.GetValues()))
	for _, v := range msg.GetValues() {
		list = append(list, v.GetStringValue())
	}

	return list
}

// StatusToProto converts a status.
func StatusToProto(s domain.Status) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRinging:   structpb.NewBoolValue(s.Ringing),
		fieldTone:      structpb.NewStringValue(s.Tone),
		fieldNow:       structpb.NewStringValue(s.Now.String()),
		fieldScheduled: structpb.NewNumberValue(float64(s.Scheduled)),
	}}
}

// StatusFromProto converts a status back.
func StatusFromProto(msg *structpb.Struct) (domain.Status, error) {
	fields := msg.GetFields()

	now, err := domain.ParseTimeOfDay(fields[fieldNow].GetStringValue())
	if err != nil {
		return domain.Status{}, fmt.Errorf("%w: status time: %w", errMalformed, err)
	}

	return domain.Status{
		Ringing:   fields[fieldRinging].GetBoolValue(),
		Tone:      fields[fieldTone].GetStringValue(),
		Now:       now,
		Scheduled: int(fields[fieldScheduled].GetNumberValue()),
	}, nil
}

// EventToProto converts a hub event. Only the fields its type uses are set.
func EventToProto(ev events.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(ev.Type)),
		fieldAt:   structpb.NewStringValue(ev.At.Format(time.RFC3339Nano)),
	}

	if ev.Alarm != nil {
		fields[fieldAlarm] = structpb.NewStructValue(AlarmToProto(*ev.Alarm))
	}

	switch ev.Type {
	case events.TypeStopped:
		fields[fieldTone] = structpb.NewStringValue(ev.Tone)
	case events.TypeChanged:
		fields[fieldCount] = structpb.NewNumberValue(float64(ev.Count))
	case events.TypeError:
		fields[fieldKind] = structpb.NewStringValue(string(ev.Kind))
		fields[fieldMessage] = structpb.NewStringValue(ev.Message)
	case events.TypeRinging:
	}

	return &structpb.Struct{Fields: fields}
}

// EventFromProto converts a hub event back.
func EventFromProto(msg *structpb.Struct) (events.Event, error) {
	fields := msg.GetFields()

	at, err := time.Parse(time.RFC3339Nano, fields[fieldAt].GetStringValue())
	if err != nil {
		return events.Event{}, fmt.Errorf("%w: event time: %w", errMalformed, err)
	}

	ev := events.Event{
		Type:    events.Type(fields[fieldType].GetStringValue()),
		At:      at,
		Tone:    fields[fieldTone].GetStringValue(),
		Count:   int(fields[fieldCount].GetNumberValue()),
		Kind:    domain.Kind(fields[fieldKind].GetStringValue()),
		Message: fields[fieldMessage].GetStringValue(),
	}

	if v, ok := fields[fieldAlarm]; ok {
		a, err := AlarmFromProto(v.GetStructValue())
		if err != nil {
			return events.Event{}, err
		}

		ev.Alarm = &a
	}

	return ev, nil
}
