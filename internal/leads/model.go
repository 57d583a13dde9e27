package leads

// LeadRequest is a contact form submission from a prospective customer.
// After validation Name, Phone and Email are non-empty and every optional
// field is either nil or a non-empty trimmed string.
type LeadRequest struct {
	Name        string  `json:"name" validate:"min=1"`
	Phone       string  `json:"phone" validate:"min=5"`
	Email       string  `json:"email" validate:"email"`
	ZIP         *string `json:"zip,omitempty"`
	ServiceType *string `json:"serviceType,omitempty"`
	Date        *string `json:"date,omitempty"`
	TimeWindow  *string `json:"timeWindow,omitempty"`
	Budget      *string `json:"budget,omitempty"`
	Details     *string `json:"details,omitempty"`
}

// Receipt is returned once the notification has been handed to the transport.
type Receipt struct {
	ID string `json:"id"`
}

// Option is a labelled value offered by the contact form selects.
type Option struct {
	Value string
	Label string
}

// ServiceTypes are the choices the form offers. The server accepts any text.
var ServiceTypes = []Option{
	{Value: "repairs", Label: "General repairs"},
	{Value: "installations", Label: "Installations"},
	{Value: "emergency", Label: "Emergency help"},
}

// TimeWindows are the preferred arrival windows the form offers.
var TimeWindows = []Option{
	{Value: "morning", Label: "Morning (8–12)"},
	{Value: "afternoon", Label: "Afternoon (12–4)"},
	{Value: "evening", Label: "Evening (4–7)"},
}

// field names in the order they are validated, reported and rendered
const (
	fieldName        = "name"
	fieldPhone       = "phone"
	fieldEmail       = "email"
	fieldZIP         = "zip"
	fieldServiceType = "serviceType"
	fieldDate        = "date"
	fieldTimeWindow  = "timeWindow"
	fieldBudget      = "budget"
	fieldDetails     = "details"
)

var requiredFields = []string{fieldName, fieldPhone, fieldEmail}

var optionalFields = []string{fieldZIP, fieldServiceType, fieldDate, fieldTimeWindow, fieldBudget, fieldDetails}

// Fields lists every LeadRequest field in schema order.
func Fields() []string {
	out := make([]string, 0, len(requiredFields)+len(optionalFields))
	out = append(out, requiredFields...)
	return append(out, optionalFields...)
}

// optional returns a pointer to the named optional field.
func (l *LeadRequest) optional(field string) **string {
	switch field {
	case fieldZIP:
		return &l.ZIP
	case fieldServiceType:
		return &l.ServiceType
	case fieldDate:
		return &l.Date
	case fieldTimeWindow:
		return &l.TimeWindow
	case fieldBudget:
		return &l.Budget
	case fieldDetails:
		return &l.Details
	}
	return nil
}

// required returns a pointer to the named required field.
func (l *LeadRequest) required(field string) *string {
	switch field {
	case fieldName:
		return &l.Name
	case fieldPhone:
		return &l.Phone
	case fieldEmail:
		return &l.Email
	}
	return nil
}

// Value returns the named field's value, or "" when absent.
func (l *LeadRequest) Value(field string) string {
	if p := l.required(field); p != nil {
		return *p
	}
	if p := l.optional(field); p != nil && *p != nil {
		return **p
	}
	return ""
}
