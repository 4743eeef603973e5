// Package model defines the records stored in the hosted document database.
//
// The store is schemaless, and two generations of write paths left drift in
// the live collections: reference fields are sometimes an array of {_id}
// objects and sometimes a bare string, the selected-activity list is
// sometimes a JSON array and sometimes a comma-delimited string, and the log
// timestamp lives under three different field names. The policy here is to
// normalize ALL of that at the decode boundary (see flex.go) so that every
// other package only ever sees clean Go values.
package model

// User is an account record in the /users collection. The durable identity
// is the store-assigned ID; Username and Email are unique by client-side
// pre-check only, which is race-prone under concurrent signups.
type User struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Active   bool   `json:"active"`
}

// Profile is the /profiles record paired one-to-one with a User by
// convention. It is created lazily the first time a profile view needs it.
type Profile struct {
	ID        string  `json:"_id,omitempty"`
	UserRefs  RefList `json:"userid"`
	FullName  string  `json:"fullName"`
	Bio       string  `json:"bio"`
	AvatarURL string  `json:"avatarUrl"`
}

// UserRef returns the referenced user id, or "" when the ref is missing.
func (p *Profile) UserRef() string {
	return p.UserRefs.First()
}

// MoodDefinition is a named, iconified, colored category in /moods.
//
// MoodID is a display-oriented sequential integer assigned client-side as
// max+1. It is a hint, not an identity: two devices creating a mood at the
// same time can assign the same MoodID. Joins always use the store ID.
type MoodDefinition struct {
	ID          string  `json:"_id,omitempty"`
	MoodID      int     `json:"moodid"`
	Name        string  `json:"name"`
	Description string  `json:"mooddesc"`
	Icon        string  `json:"icon,omitempty"`
	Color       string  `json:"color,omitempty"`
	CreatedBy   RefList `json:"created_by"`
}

// Activity is a suggested action in /activities, associated with one or
// more mood definitions via MoodRefs. NumericID follows the same advisory
// max+1 pattern as MoodDefinition.MoodID.
type Activity struct {
	ID         string  `json:"_id,omitempty"`
	NumericID  int     `json:"id"`
	Suggestion string  `json:"suggestion"`
	MoodRefs   RefList `json:"mood_id"`
}

// UserMoodLog is one mood-logging action in /usermoods (or the legacy
// /moodlogs collection). Multiple logs per day are allowed by the data
// model; "today's log" is a view concern, not a storage constraint.
//
// Three timestamp fields exist because three write paths existed. When()
// resolves them; nothing else should read the fields directly.
type UserMoodLog struct {
	ID         string  `json:"_id,omitempty"`
	UserRefs   RefList `json:"user_id"`
	MoodRefs   RefList `json:"mood_id"`
	Notes      string  `json:"notes"`
	Activities IDList  `json:"activities"`

	CreatedAt     Timestamp `json:"created_at,omitzero"`
	CreatedAtTypo Timestamp `json:"createed_at,omitzero"` // misspelled legacy write path
	Date          Timestamp `json:"date,omitzero"`
}

// UserRef returns the owning user's id, or "" when missing.
func (l *UserMoodLog) UserRef() string {
	return l.UserRefs.First()
}

// MoodRef returns the referenced mood definition id, or "" when missing.
// A non-empty result is still not guaranteed to resolve — the definition
// may have been deleted since the log was written.
func (l *UserMoodLog) MoodRef() string {
	return l.MoodRefs.First()
}

// When returns the log's timestamp, checking the misspelled field first,
// then created_at, then date — the same precedence the history view always
// used. Returns the zero time when no field parses; callers treat that as
// "now" so malformed records stay visible.
func (l *UserMoodLog) When() Timestamp {
	switch {
	case !l.CreatedAtTypo.IsZero():
		return l.CreatedAtTypo
	case !l.CreatedAt.IsZero():
		return l.CreatedAt
	default:
		return l.Date
	}
}
