package internal

// Fields returns the full profile as a ProfileFields snapshot. Empty
// optional strings are reported as absent.
func (p Profile) Fields() ProfileFields {
	return ProfileFields{
		Name:                stringPtr(p.Name, true),
		BirthDate:           stringPtr(p.BirthDate, false),
		Gender:              stringPtr(p.Gender, false),
		WeightKg:            clonePtr(p.WeightKg),
		HeightCm:            clonePtr(p.HeightCm),
		HeadCircumferenceCm: clonePtr(p.HeadCircumferenceCm),
	}
}

// ApplyTo writes every present field into p. An empty string clears an
// optional text field.
func (f ProfileFields) ApplyTo(p *Profile) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.BirthDate != nil {
		p.BirthDate = *f.BirthDate
	}
	if f.Gender != nil {
		p.Gender = *f.Gender
	}
	if f.WeightKg != nil {
		p.WeightKg = clonePtr(f.WeightKg)
	}
	if f.HeightCm != nil {
		p.HeightCm = clonePtr(f.HeightCm)
	}
	if f.HeadCircumferenceCm != nil {
		p.HeadCircumferenceCm = clonePtr(f.HeadCircumferenceCm)
	}
}

// IsEmpty reports whether no field is present.
func (f ProfileFields) IsEmpty() bool {
	return f == ProfileFields{}
}

func stringPtr(s string, keepEmpty bool) *string {
	if s == "" && !keepEmpty {
		return nil
	}
	return &s
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
