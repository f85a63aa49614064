// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import (
	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// ProfileAll turns on every derived block and must appear alone.
const ProfileAll = "all"

type profileOptions struct {
	self     bool
	age      bool
	events   bool
	families bool
	span     bool
}

// profileSupport is the set of profile options each kind understands.
var profileSupport = map[store.Kind]map[string]bool{
	store.KindPerson: {"self": true, "age": true, "events": true, "families": true, "span": true},
	store.KindFamily: {"self": true, "span": true},
	store.KindEvent:  {"self": true},
}

func parseProfileOptions(kind store.Kind, opts []string) (profileOptions, error) {
	supported, ok := profileSupport[kind]
	if !ok {
		return profileOptions{}, kinerr.Errorf(kinerr.CodeQueryProfileInvalid, "%s records have no profile", kind)
	}
	var o profileOptions
	for _, opt := range opts {
		if opt == ProfileAll {
			if len(opts) > 1 {
				return profileOptions{}, kinerr.New(kinerr.CodeQueryParamsConflict, "profile option all excludes other options")
			}
			return profileOptions{self: true, age: true, events: true, families: true, span: true}, nil
		}
		if !supported[opt] {
			return profileOptions{}, kinerr.Errorf(kinerr.CodeQueryProfileInvalid, "unknown profile option %q for %s", opt, kind)
		}
		switch opt {
		case "self":
			o.self = true
		case "age":
			o.age = true
		case "events":
			o.events = true
		case "families":
			o.families = true
		case "span":
			o.span = true
		}
	}
	return o, nil
}

// ValidateProfile checks profile options eagerly, before any record is shaped.
func ValidateProfile(kind store.Kind, opts []string) error {
	if len(opts) == 0 {
		return nil
	}
	_, err := parseProfileOptions(kind, opts)
	return err
}

// profileBuilder derives the human-readable summary blocks of records under
// one locale catalog.
type profileBuilder struct {
	ec  *evalContext
	cat *Catalog
}

func sexCode(gender int) string {
	switch gender {
	case 0:
		return "F"
	case 1:
		return "M"
	}
	return "U"
}

// eventBrief summarizes one referenced event: localized type, formatted date
// and place title. When since is a known date the brief carries the elapsed
// span as age. An unresolved reference yields an empty brief.
func (b *profileBuilder) eventBrief(handle string, since store.Date, withAge bool) (map[string]any, error) {
	if handle == "" {
		return map[string]any{}, nil
	}
	obj, err := b.ec.store.Get(b.ec.ctx, store.KindEvent, handle)
	if err != nil {
		if isNotFound(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	ev := obj.(*store.Event)
	brief := map[string]any{
		"type": b.cat.Label(ev.Type),
		"date": FormatDate(ev.Date),
	}
	if ev.Place != "" {
		place, err := b.ec.store.Get(b.ec.ctx, store.KindPlace, ev.Place)
		if err == nil {
			brief["place"] = place.(*store.Place).Title
		} else if !isNotFound(err) {
			return nil, err
		}
	}
	if withAge {
		if span, ok := spanBetween(since, ev.Date); ok {
			brief["age"] = b.cat.FormatSpan(span)
		}
	}
	return brief, nil
}

func (b *profileBuilder) personProfile(p *store.Person, o profileOptions, recurse bool) (map[string]any, error) {
	birth := b.ec.personBirthDate(p)
	profile := map[string]any{
		"handle":       p.Handle,
		"gramps_id":    p.GrampsID,
		"name_given":   p.PrimaryName.FirstName,
		"name_surname": p.PrimaryName.PrimarySurname(),
		"sex":          sexCode(p.Gender),
	}

	birthBrief, err := b.eventBrief(eventRefHandle(p.BirthRef()), store.Date{}, false)
	if err != nil {
		return nil, err
	}
	profile["birth"] = birthBrief
	deathBrief, err := b.eventBrief(eventRefHandle(p.DeathRef()), birth, o.age)
	if err != nil {
		return nil, err
	}
	profile["death"] = deathBrief

	if o.events {
		events := make([]map[string]any, 0, len(p.EventRefList))
		for _, ref := range p.EventRefList {
			brief, err := b.eventBrief(ref.Ref, birth, o.age)
			if err != nil {
				return nil, err
			}
			if ref.Role != "" {
				brief["role"] = ref.Role
			}
			events = append(events, brief)
		}
		profile["events"] = events
	}

	if o.families && recurse {
		families, err := b.familyProfiles(p.FamilyList, o)
		if err != nil {
			return nil, err
		}
		profile["families"] = families

		primary := p.MainParentsFamilyHandle()
		primaryProfile := map[string]any{}
		if primary != "" {
			if fp, ok, err := b.familyProfileByHandle(primary, o); err != nil {
				return nil, err
			} else if ok {
				primaryProfile = fp
			}
		}
		profile["primary_parent_family"] = primaryProfile

		var others []string
		for _, h := range p.ParentFamilyList {
			if h != primary {
				others = append(others, h)
			}
		}
		otherProfiles, err := b.familyProfiles(others, o)
		if err != nil {
			return nil, err
		}
		profile["other_parent_families"] = otherProfiles
	}
	return profile, nil
}

func eventRefHandle(ref store.EventRef, ok bool) string {
	if !ok {
		return ""
	}
	return ref.Ref
}

func (b *profileBuilder) familyProfiles(handles []string, o profileOptions) ([]map[string]any, error) {
	profiles := make([]map[string]any, 0, len(handles))
	for _, handle := range handles {
		fp, ok, err := b.familyProfileByHandle(handle, o)
		if err != nil {
			return nil, err
		}
		if ok {
			profiles = append(profiles, fp)
		}
	}
	return profiles, nil
}

func (b *profileBuilder) familyProfileByHandle(handle string, o profileOptions) (map[string]any, bool, error) {
	obj, err := b.ec.store.Get(b.ec.ctx, store.KindFamily, handle)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	fp, err := b.familyProfile(obj.(*store.Family), o)
	if err != nil {
		return nil, false, err
	}
	return fp, true, nil
}

// familyEventDate finds a family's first event of a given type and returns
// its handle and date.
func (b *profileBuilder) familyEvent(f *store.Family, eventType string) (string, store.Date, error) {
	for _, ref := range f.EventRefList {
		obj, err := b.ec.store.Get(b.ec.ctx, store.KindEvent, ref.Ref)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", store.Date{}, err
		}
		if ev := obj.(*store.Event); ev.Type == eventType {
			return ref.Ref, ev.Date, nil
		}
	}
	return "", store.Date{}, nil
}

func (b *profileBuilder) memberProfile(handle string, o profileOptions) (map[string]any, bool, error) {
	obj, err := b.ec.store.Get(b.ec.ctx, store.KindPerson, handle)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	// Family members carry their vital summary with age at death, but never
	// recurse back into their own families.
	mp, err := b.personProfile(obj.(*store.Person), profileOptions{self: true, age: true}, false)
	if err != nil {
		return nil, false, err
	}
	return mp, true, nil
}

func (b *profileBuilder) familyProfile(f *store.Family, o profileOptions) (map[string]any, error) {
	profile := map[string]any{
		"handle":       f.Handle,
		"gramps_id":    f.GrampsID,
		"relationship": b.cat.Label(f.Type),
	}

	surname := ""
	if f.FatherHandle != "" {
		if father, err := b.ec.store.Get(b.ec.ctx, store.KindPerson, f.FatherHandle); err == nil {
			surname = father.(*store.Person).PrimaryName.PrimarySurname()
		} else if !isNotFound(err) {
			return nil, err
		}
	}
	profile["family_surname"] = surname

	marriageHandle, marriageDate, err := b.familyEvent(f, "Marriage")
	if err != nil {
		return nil, err
	}
	marriage, err := b.eventBrief(marriageHandle, store.Date{}, false)
	if err != nil {
		return nil, err
	}
	profile["marriage"] = marriage

	divorceHandle, divorceDate, err := b.familyEvent(f, "Divorce")
	if err != nil {
		return nil, err
	}
	divorce, err := b.eventBrief(divorceHandle, store.Date{}, false)
	if err != nil {
		return nil, err
	}
	profile["divorce"] = divorce

	if o.span {
		end, err := b.unionEndDate(f, divorceHandle, divorceDate)
		if err != nil {
			return nil, err
		}
		if span, ok := spanBetween(marriageDate, end); ok {
			profile["span"] = b.cat.FormatSpan(span)
		}
	}

	if father, ok, err := b.memberProfile(f.FatherHandle, o); err != nil {
		return nil, err
	} else if ok {
		profile["father"] = father
	}
	if mother, ok, err := b.memberProfile(f.MotherHandle, o); err != nil {
		return nil, err
	} else if ok {
		profile["mother"] = mother
	}

	children := make([]map[string]any, 0, len(f.ChildRefList))
	for _, ref := range f.ChildRefList {
		child, ok, err := b.memberProfile(ref.Ref, o)
		if err != nil {
			return nil, err
		}
		if ok {
			children = append(children, child)
		}
	}
	profile["children"] = children
	return profile, nil
}

// unionEndDate picks when a family union ended: the divorce when there is
// one, otherwise the earliest partner death.
func (b *profileBuilder) unionEndDate(f *store.Family, divorceHandle string, divorceDate store.Date) (store.Date, error) {
	if divorceHandle != "" && !divorceDate.IsEmpty() {
		return divorceDate, nil
	}
	var end store.Date
	for _, handle := range []string{f.FatherHandle, f.MotherHandle} {
		if handle == "" {
			continue
		}
		obj, err := b.ec.store.Get(b.ec.ctx, store.KindPerson, handle)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return store.Date{}, err
		}
		death := b.ec.personDeathDate(obj.(*store.Person))
		if death.IsEmpty() {
			continue
		}
		if end.IsEmpty() || dateOrdinal(death) < dateOrdinal(end) {
			end = death
		}
	}
	return end, nil
}

func (b *profileBuilder) eventProfile(ev *store.Event) (map[string]any, error) {
	profile := map[string]any{
		"type": b.cat.Label(ev.Type),
		"date": FormatDate(ev.Date),
	}
	if ev.Place != "" {
		if place, err := b.ec.store.Get(b.ec.ctx, store.KindPlace, ev.Place); err == nil {
			profile["place"] = place.(*store.Place).Title
		}
	}
	if ev.Description != "" {
		profile["summary"] = ev.Description
	}
	age, ok, err := b.participantAge(ev)
	if err != nil {
		return nil, err
	}
	if ok {
		profile["age"] = age
	}
	return profile, nil
}

// participantAge is the primary participant's age at the event: the first
// person referencing the event in a primary role who has a known birth date.
func (b *profileBuilder) participantAge(ev *store.Event) (string, bool, error) {
	if ev.Date.IsEmpty() {
		return "", false, nil
	}
	links, err := b.ec.store.Backlinks(b.ec.ctx, ev.Handle)
	if err != nil {
		return "", false, err
	}
	for _, handle := range links[store.KindPerson] {
		obj, err := b.ec.store.Get(b.ec.ctx, store.KindPerson, handle)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", false, err
		}
		p := obj.(*store.Person)
		if !primaryParticipant(p, ev.Handle) {
			continue
		}
		birth := b.ec.personBirthDate(p)
		if birth.IsEmpty() {
			continue
		}
		if span, ok := spanBetween(birth, ev.Date); ok {
			return b.cat.FormatSpan(span), true, nil
		}
	}
	return "", false, nil
}

func primaryParticipant(p *store.Person, eventHandle string) bool {
	for _, ref := range p.EventRefList {
		if ref.Ref == eventHandle {
			return ref.Role == "" || ref.Role == "Primary"
		}
	}
	return false
}

// applyProfile derives the profile block of one record under the given
// locale catalog.
func applyProfile(ec *evalContext, cat *Catalog, kind store.Kind, obj store.Object, opts []string) (map[string]any, error) {
	o, err := parseProfileOptions(kind, opts)
	if err != nil {
		return nil, err
	}
	b := &profileBuilder{ec: ec, cat: cat}
	switch kind {
	case store.KindPerson:
		return b.personProfile(obj.(*store.Person), o, true)
	case store.KindFamily:
		return b.familyProfile(obj.(*store.Family), o)
	case store.KindEvent:
		return b.eventProfile(obj.(*store.Event))
	}
	return nil, kinerr.Errorf(kinerr.CodeQueryProfileInvalid, "%s records have no profile", kind)
}
