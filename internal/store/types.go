// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

// Object is the common surface of every stored entity. Handles are opaque,
// store-assigned, and stable; the gramps_id is the human-facing identifier
// (empty for kinds that do not carry one, i.e. tags).
type Object interface {
	ObjectHandle() string
	ObjectKind() Kind
	ObjectID() string
}

// Date is a partial calendar date. A zero component is unknown; a fully
// zero Date means the date itself is unknown.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// IsEmpty reports whether the date is fully unknown.
func (d Date) IsEmpty() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// --- Reference records ---

// EventRef points at an event and carries the role the referrer plays in it.
type EventRef struct {
	Ref  string `json:"ref"`
	Role string `json:"role"`
}

// MediaRef points at a media object.
type MediaRef struct {
	Ref string `json:"ref"`
}

// PersonRef points at an associated person (godparent, witness, DNA match, ...).
type PersonRef struct {
	Ref string `json:"ref"`
	Rel string `json:"rel"`
}

// ChildRef points at a child of a family with the relation to each parent.
type ChildRef struct {
	Ref       string `json:"ref"`
	FatherRel string `json:"frel"`
	MotherRel string `json:"mrel"`
}

// RepoRef points at a repository holding a source.
type RepoRef struct {
	Ref        string `json:"ref"`
	CallNumber string `json:"call_number"`
	MediaType  string `json:"media_type"`
}

// --- Sub-records ---

// Surname is one surname of a name; Primary marks the one used for sorting.
type Surname struct {
	Surname string `json:"surname"`
	Prefix  string `json:"prefix"`
	Primary bool   `json:"primary"`
}

// Name is a personal name.
type Name struct {
	FirstName   string    `json:"first_name"`
	SurnameList []Surname `json:"surname_list"`
	Suffix      string    `json:"suffix"`
	Title       string    `json:"title"`
	Nick        string    `json:"nick"`
	Call        string    `json:"call"`
}

// PrimarySurname returns the surname marked primary, or the first one.
func (n Name) PrimarySurname() string {
	for _, s := range n.SurnameList {
		if s.Primary {
			return s.Surname
		}
	}
	if len(n.SurnameList) > 0 {
		return n.SurnameList[0].Surname
	}
	return ""
}

// Address is a postal address attached to a person or repository.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	County   string `json:"county"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Postal   string `json:"postal"`
	DateText string `json:"date_text"`
}

// URL is a web reference.
type URL struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// --- Entities ---

// Person is an individual in the tree. Gender follows the Gramps encoding:
// 0 female, 1 male, 2 unknown.
type Person struct {
	Handle           string      `json:"handle"`
	GrampsID         string      `json:"gramps_id"`
	Change           int64       `json:"change"`
	Private          bool        `json:"private"`
	Gender           int         `json:"gender"`
	PrimaryName      Name        `json:"primary_name"`
	AlternateNames   []Name      `json:"alternate_names"`
	BirthRefIndex    int         `json:"birth_ref_index"`
	DeathRefIndex    int         `json:"death_ref_index"`
	EventRefList     []EventRef  `json:"event_ref_list"`
	FamilyList       []string    `json:"family_list"`
	ParentFamilyList []string    `json:"parent_family_list"`
	AddressList      []Address   `json:"address_list"`
	URLs             []URL       `json:"urls"`
	MediaList        []MediaRef  `json:"media_list"`
	CitationList     []string    `json:"citation_list"`
	NoteList         []string    `json:"note_list"`
	PersonRefList    []PersonRef `json:"person_ref_list"`
	TagList          []string    `json:"tag_list"`
}

func (p *Person) ObjectHandle() string { return p.Handle }
func (p *Person) ObjectKind() Kind     { return KindPerson }
func (p *Person) ObjectID() string     { return p.GrampsID }

// MainParentsFamilyHandle returns the handle of the primary parent family,
// which is by convention the first entry of the parent-family list.
func (p *Person) MainParentsFamilyHandle() string {
	if len(p.ParentFamilyList) == 0 {
		return ""
	}
	return p.ParentFamilyList[0]
}

// BirthRef returns the event reference recording the birth, if indexed.
func (p *Person) BirthRef() (EventRef, bool) {
	return p.eventRefAt(p.BirthRefIndex)
}

// DeathRef returns the event reference recording the death, if indexed.
func (p *Person) DeathRef() (EventRef, bool) {
	return p.eventRefAt(p.DeathRefIndex)
}

func (p *Person) eventRefAt(idx int) (EventRef, bool) {
	if idx < 0 || idx >= len(p.EventRefList) {
		return EventRef{}, false
	}
	return p.EventRefList[idx], true
}

// Family binds two partners and their children.
type Family struct {
	Handle       string     `json:"handle"`
	GrampsID     string     `json:"gramps_id"`
	Change       int64      `json:"change"`
	Private      bool       `json:"private"`
	FatherHandle string     `json:"father_handle"`
	MotherHandle string     `json:"mother_handle"`
	Type         string     `json:"type"`
	ChildRefList []ChildRef `json:"child_ref_list"`
	EventRefList []EventRef `json:"event_ref_list"`
	MediaList    []MediaRef `json:"media_list"`
	CitationList []string   `json:"citation_list"`
	NoteList     []string   `json:"note_list"`
	TagList      []string   `json:"tag_list"`
}

func (f *Family) ObjectHandle() string { return f.Handle }
func (f *Family) ObjectKind() Kind     { return KindFamily }
func (f *Family) ObjectID() string     { return f.GrampsID }

// Event is a dated occurrence, optionally located at a place.
type Event struct {
	Handle       string     `json:"handle"`
	GrampsID     string     `json:"gramps_id"`
	Change       int64      `json:"change"`
	Private      bool       `json:"private"`
	Type         string     `json:"type"`
	Date         Date       `json:"date"`
	Place        string     `json:"place"`
	Description  string     `json:"description"`
	MediaList    []MediaRef `json:"media_list"`
	CitationList []string   `json:"citation_list"`
	NoteList     []string   `json:"note_list"`
	TagList      []string   `json:"tag_list"`
}

func (e *Event) ObjectHandle() string { return e.Handle }
func (e *Event) ObjectKind() Kind     { return KindEvent }
func (e *Event) ObjectID() string     { return e.GrampsID }

// Place is a geographic location.
type Place struct {
	Handle       string     `json:"handle"`
	GrampsID     string     `json:"gramps_id"`
	Change       int64      `json:"change"`
	Private      bool       `json:"private"`
	Title        string     `json:"title"`
	Name         string     `json:"name"`
	Code         string     `json:"code"`
	Lat          string     `json:"lat"`
	Long         string     `json:"long"`
	URLs         []URL      `json:"urls"`
	MediaList    []MediaRef `json:"media_list"`
	CitationList []string   `json:"citation_list"`
	NoteList     []string   `json:"note_list"`
	TagList      []string   `json:"tag_list"`
}

func (p *Place) ObjectHandle() string { return p.Handle }
func (p *Place) ObjectKind() Kind     { return KindPlace }
func (p *Place) ObjectID() string     { return p.GrampsID }

// Citation records where a source was consulted. Confidence follows the
// Gramps scale 0 (very low) to 4 (very high).
type Citation struct {
	Handle       string     `json:"handle"`
	GrampsID     string     `json:"gramps_id"`
	Change       int64      `json:"change"`
	Private      bool       `json:"private"`
	Date         Date       `json:"date"`
	Page         string     `json:"page"`
	Confidence   int        `json:"confidence"`
	SourceHandle string     `json:"source_handle"`
	MediaList    []MediaRef `json:"media_list"`
	NoteList     []string   `json:"note_list"`
	TagList      []string   `json:"tag_list"`
}

func (c *Citation) ObjectHandle() string { return c.Handle }
func (c *Citation) ObjectKind() Kind     { return KindCitation }
func (c *Citation) ObjectID() string     { return c.GrampsID }

// Source is a document or record collection citations point at.
type Source struct {
	Handle      string     `json:"handle"`
	GrampsID    string     `json:"gramps_id"`
	Change      int64      `json:"change"`
	Private     bool       `json:"private"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Pubinfo     string     `json:"pubinfo"`
	Abbrev      string     `json:"abbrev"`
	RepoRefList []RepoRef  `json:"reporef_list"`
	MediaList   []MediaRef `json:"media_list"`
	NoteList    []string   `json:"note_list"`
	TagList     []string   `json:"tag_list"`
}

func (s *Source) ObjectHandle() string { return s.Handle }
func (s *Source) ObjectKind() Kind     { return KindSource }
func (s *Source) ObjectID() string     { return s.GrampsID }

// Media is a media object (image, document, recording).
type Media struct {
	Handle       string   `json:"handle"`
	GrampsID     string   `json:"gramps_id"`
	Change       int64    `json:"change"`
	Private      bool     `json:"private"`
	Path         string   `json:"path"`
	Mime         string   `json:"mime"`
	Desc         string   `json:"desc"`
	Checksum     string   `json:"checksum"`
	Date         Date     `json:"date"`
	CitationList []string `json:"citation_list"`
	NoteList     []string `json:"note_list"`
	TagList      []string `json:"tag_list"`
}

func (m *Media) ObjectHandle() string { return m.Handle }
func (m *Media) ObjectKind() Kind     { return KindMedia }
func (m *Media) ObjectID() string     { return m.GrampsID }

// Repository is an institution holding sources.
type Repository struct {
	Handle      string    `json:"handle"`
	GrampsID    string    `json:"gramps_id"`
	Change      int64     `json:"change"`
	Private     bool      `json:"private"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	AddressList []Address `json:"address_list"`
	URLs        []URL     `json:"urls"`
	NoteList    []string  `json:"note_list"`
	TagList     []string  `json:"tag_list"`
}

func (r *Repository) ObjectHandle() string { return r.Handle }
func (r *Repository) ObjectKind() Kind     { return KindRepository }
func (r *Repository) ObjectID() string     { return r.GrampsID }

// Note is free-form text attached to other entities.
type Note struct {
	Handle   string   `json:"handle"`
	GrampsID string   `json:"gramps_id"`
	Change   int64    `json:"change"`
	Private  bool     `json:"private"`
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	TagList  []string `json:"tag_list"`
}

func (n *Note) ObjectHandle() string { return n.Handle }
func (n *Note) ObjectKind() Kind     { return KindNote }
func (n *Note) ObjectID() string     { return n.GrampsID }

// Tag is a label applied across entity kinds. Tags carry no gramps_id.
type Tag struct {
	Handle   string `json:"handle"`
	Change   int64  `json:"change"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Priority int    `json:"priority"`
}

func (t *Tag) ObjectHandle() string { return t.Handle }
func (t *Tag) ObjectKind() Kind     { return KindTag }
func (t *Tag) ObjectID() string     { return "" }

// TreeSummary reports tree-level metadata for the tree resource.
type TreeSummary struct {
	DefaultPerson string       `json:"default_person"`
	Counts        map[Kind]int `json:"counts"`
}
