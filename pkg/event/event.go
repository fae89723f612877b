package event

// Type identifies which concrete payload an Event carries.
type Type int

const (
	TypeLog Type = iota
	TypeMetric
	TypeSpan
	TypeRaw
)

func (t Type) String() string {
	switch t {
	case TypeLog:
		return "log"
	case TypeMetric:
		return "metric"
	case TypeSpan:
		return "span"
	case TypeRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Meta carries the fields common to every event kind.
type Meta struct {
	Timestamp   int64 // unix seconds
	TimestampNs int64 // nanosecond remainder, [0, 1e9)
}

// Event is the tagged union described by the data model: every concrete
// payload type implements it, and callers dispatch on Type() with a type
// switch rather than reflection.
type Event interface {
	Type() Type
	DataSize() int64
}

// LogEvent is a single structured log line: an ordered set of content
// fields plus per-event tags layered on top of the group's own tags.
type LogEvent struct {
	Meta
	Contents *SizedTags
	Tags     *SizedTags
}

func (e *LogEvent) Type() Type { return TypeLog }

func (e *LogEvent) DataSize() int64 {
	var size int64
	if e.Contents != nil {
		size += e.Contents.DataSize()
	}
	if e.Tags != nil {
		size += e.Tags.DataSize()
	}
	return size
}

// MetricEvent is a single metric sample: name, value, and labels.
type MetricEvent struct {
	Meta
	Name   string
	Value  MetricValue
	Labels *SizedTags
}

func (e *MetricEvent) Type() Type { return TypeMetric }

func (e *MetricEvent) DataSize() int64 {
	size := int64(len(e.Name)) + 8
	if e.Labels != nil {
		size += e.Labels.DataSize()
	}
	return size
}

// MetricValue is the sum type a metric sample carries: either a single
// float64 or a map of named doubles. The zero value is the "monostate"
// case (neither set), matching the original's
// std::variant<std::monostate, double, std::map<std::string, double>>.
type MetricValue struct {
	single    float64
	hasSingle bool
	multi     map[string]float64
}

// SingleMetricValue builds a MetricValue holding one float64.
func SingleMetricValue(v float64) MetricValue {
	return MetricValue{single: v, hasSingle: true}
}

// MultiMetricValue builds a MetricValue holding a map of named doubles.
func MultiMetricValue(values map[string]float64) MetricValue {
	return MetricValue{multi: values}
}

// IsEmpty reports whether v is the monostate case: neither a single value
// nor a multi-value map was ever set.
func (v MetricValue) IsEmpty() bool {
	return !v.hasSingle && v.multi == nil
}

// Single returns the single float64 value and true, or (0, false) if v does
// not hold a single value.
func (v MetricValue) Single() (float64, bool) {
	return v.single, v.hasSingle
}

// Multi returns the named-double map and true, or (nil, false) if v does not
// hold a multi-value map.
func (v MetricValue) Multi() (map[string]float64, bool) {
	return v.multi, v.multi != nil
}

// SpanEvent is a single trace span.
type SpanEvent struct {
	Meta
	TraceID    string
	SpanID     string
	ParentID   string
	Name       string
	Kind       string
	DurationNs int64
	Tags       *SizedTags
	Links      []SpanLink
	Events     []SpanChildEvent
}

// SpanLink references another span from within this one.
type SpanLink struct {
	TraceID string
	SpanID  string
	Tags    *SizedTags
}

// SpanChildEvent is a timed annotation attached to a span.
type SpanChildEvent struct {
	Timestamp int64
	Name      string
	Tags      *SizedTags
}

func (e *SpanEvent) Type() Type { return TypeSpan }

func (e *SpanEvent) DataSize() int64 {
	size := int64(len(e.TraceID) + len(e.SpanID) + len(e.ParentID) + len(e.Name) + len(e.Kind) + 8)
	if e.Tags != nil {
		size += e.Tags.DataSize()
	}
	for _, l := range e.Links {
		size += int64(len(l.TraceID) + len(l.SpanID))
		if l.Tags != nil {
			size += l.Tags.DataSize()
		}
	}
	for _, ev := range e.Events {
		size += int64(len(ev.Name)) + 8
		if ev.Tags != nil {
			size += ev.Tags.DataSize()
		}
	}
	return size
}

// RawEvent is an opaque byte payload passed through unmodified, for inputs
// that produce already-framed data.
type RawEvent struct {
	Meta
	Data []byte
}

func (e *RawEvent) Type() Type { return TypeRaw }

func (e *RawEvent) DataSize() int64 { return int64(len(e.Data)) }
