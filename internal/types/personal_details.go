package types

// Known personal detail field names, as submitted by the step 1 form.
const (
	FieldFirstName      = "firstName"
	FieldLastName       = "lastName"
	FieldJobTitle       = "jobTitle"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldCity           = "city"
	FieldZipCode        = "zipCode"
	FieldLinkedIn       = "linkedin"
	FieldWebsite        = "website"
	FieldAdditionalInfo = "additionalInfo"
)

// PersonalDetailFields lists the step 1 form fields in form order.
var PersonalDetailFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldJobTitle,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldCity,
	FieldZipCode,
	FieldLinkedIn,
	FieldWebsite,
	FieldAdditionalInfo,
}

// PersonalDetails is the flat field name -> value record of step 1.
// No field is required; an absent key reads as the empty string.
type PersonalDetails map[string]string

// Get returns the value for key or "" when absent.
func (p PersonalDetails) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// FromForm builds PersonalDetails from submitted form values. Every submitted
// name is kept, including unknown ones, and the last value of a repeated
// name wins.
func FromForm(values map[string][]string) PersonalDetails {
	out := make(PersonalDetails, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			out[key] = ""
			continue
		}
		out[key] = vals[len(vals)-1]
	}
	return out
}
