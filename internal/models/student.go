package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Defaults applied to records created through the roster.
const (
	DefaultClass         = "5th"
	DefaultDOB           = "Feb 14, 2012"
	DefaultEmail         = "demo@example.com"
	DefaultYearsInSchool = "2 years"
	DefaultProfileImage  = "stud10.png"
	DefaultAge           = 20
)

// Student is one entry of the persisted roster collection. JSON keys are the
// on-disk layout and must stay stable.
type Student struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	DOB            string         `json:"dob"`
	Class          string         `json:"class"`
	ProfileImage   Scalar         `json:"profileImage"`
	Age            Scalar         `json:"age"`
	YearsInSchool  Scalar         `json:"yearsInSchool"`
	RegistrationNo string         `json:"registrationNo,omitempty"`
	Guardian       *Guardian      `json:"guardian,omitempty"`
	FamilyMembers  []FamilyMember `json:"familyMembers,omitempty"`

	// Extra holds keys this version does not model; they are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`

	stored map[string]json.RawMessage
}

// Guardian describes the student's legal guardian.
type Guardian struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (g *Guardian) UnmarshalJSON(data []byte) error {
	var in struct {
		Name  text `json:"name"`
		Phone text `json:"phone"`
		Email text `json:"email"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*g = Guardian{Name: string(in.Name), Phone: string(in.Phone), Email: string(in.Email)}
	return nil
}

// FamilyMember is an additional contact attached to a student.
type FamilyMember struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (m *FamilyMember) UnmarshalJSON(data []byte) error {
	var in struct {
		FirstName text `json:"firstName"`
		LastName  text `json:"lastName"`
		Phone     text `json:"phone"`
		Email     text `json:"email"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = FamilyMember{
		FirstName: string(in.FirstName),
		LastName:  string(in.LastName),
		Phone:     string(in.Phone),
		Email:     string(in.Email),
	}
	return nil
}

var studentKeys = []string{
	"id", "name", "phone", "email", "dob", "class", "profileImage", "age",
	"yearsInSchool", "registrationNo", "guardian", "familyMembers",
}

type studentAlias Student

// studentInput decodes the free-text fields leniently. The shadowing fields
// win over the embedded ones because they are shallower.
type studentInput struct {
	studentAlias
	ID             text `json:"id"`
	Name           text `json:"name"`
	Phone          text `json:"phone"`
	Email          text `json:"email"`
	DOB            text `json:"dob"`
	Class          text `json:"class"`
	RegistrationNo text `json:"registrationNo"`
}

// UnmarshalJSON decodes a stored record, keeping unknown keys in Extra. Known
// keys whose stored form differs from what MarshalJSON would produce, such as
// a numeric phone or an empty guardian, are remembered so an untouched field
// is written back as it was.
func (s *Student) UnmarshalJSON(data []byte) error {
	var in studentInput
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Student(in.studentAlias)
	out.ID = string(in.ID)
	out.Name = string(in.Name)
	out.Phone = string(in.Phone)
	out.Email = string(in.Email)
	out.DOB = string(in.DOB)
	out.Class = string(in.Class)
	out.RegistrationNo = string(in.RegistrationNo)
	out.Extra = nil
	out.stored = nil

	canonical, err := out.canonicalFields()
	if err != nil {
		return err
	}
	for _, key := range studentKeys {
		value, present := raw[key]
		delete(raw, key)
		if !present || sameJSON(value, canonical[key]) {
			continue
		}
		if out.stored == nil {
			out.stored = make(map[string]json.RawMessage)
		}
		out.stored[key] = append(json.RawMessage(nil), value...)
	}
	if len(raw) > 0 {
		out.Extra = raw
	}
	*s = out
	return nil
}

// studentWire shadows the scalar fields so unset values are omitted rather
// than written as empty strings.
type studentWire struct {
	studentAlias
	ProfileImage  *Scalar `json:"profileImage,omitempty"`
	Age           *Scalar `json:"age,omitempty"`
	YearsInSchool *Scalar `json:"yearsInSchool,omitempty"`
}

func (s Student) canonicalFields() (map[string]json.RawMessage, error) {
	w := studentWire{studentAlias: studentAlias(s)}
	w.ProfileImage = scalarPtr(s.ProfileImage)
	w.Age = scalarPtr(s.Age)
	w.YearsInSchool = scalarPtr(s.YearsInSchool)

	known, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// MarshalJSON encodes the known keys in a fixed order followed by any
// preserved unknown keys.
func (s Student) MarshalJSON() ([]byte, error) {
	fields, err := s.canonicalFields()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, value json.RawMessage) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	for _, key := range studentKeys {
		value, ok := fields[key]
		if stored, kept := s.stored[key]; kept && (!ok || sameText(stored, value)) {
			value, ok = stored, true
		}
		if ok {
			write(key, value)
		}
	}
	extraKeys := make([]string, 0, len(s.Extra))
	for key := range s.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		write(key, s.Extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func scalarPtr(v Scalar) *Scalar {
	if v.IsZero() {
		return nil
	}
	return &v
}

// Clone returns a deep copy so callers can mutate without aliasing the original.
func (s Student) Clone() Student {
	out := s
	if s.Guardian != nil {
		g := *s.Guardian
		out.Guardian = &g
	}
	if s.FamilyMembers != nil {
		out.FamilyMembers = append([]FamilyMember(nil), s.FamilyMembers...)
	}
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// CloneStudents deep-copies a collection.
func CloneStudents(in []Student) []Student {
	if in == nil {
		return nil
	}
	out := make([]Student, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// JoinName builds the stored display name from its parts.
func JoinName(first, last string) string {
	return first + " " + last
}

// SplitName recovers first and last name from a stored display name by
// splitting on the first space. A name without a space yields an empty last
// name. Names whose first part itself contains a space do not round-trip.
func SplitName(name string) (first, last string) {
	first, last, _ = strings.Cut(name, " ")
	return first, last
}

// IndexStudent returns the position of id in the collection or -1.
func IndexStudent(students []Student, id string) int {
	for i := range students {
		if students[i].ID == id {
			return i
		}
	}
	return -1
}
