package catalog

import "net/url"

// EditForm carries the editable fields of a product.
type EditForm struct {
	ID                  int64
	Title               string
	Price               string
	Available           bool
	Vendor              string
	AlcoholType         string
	IgnoreNotifications bool
}

// NewEditForm pre-fills an edit form from p. A product without an alcohol
// type is offered as DefaultAlcoholType.
func NewEditForm(p *Product) EditForm {
	f := EditForm{
		ID:                  p.ID,
		Title:               p.Title,
		Price:               p.Price,
		Available:           p.Available,
		Vendor:              p.Vendor,
		AlcoholType:         p.AlcoholType,
		IgnoreNotifications: p.IgnoreNotifications,
	}
	if f.AlcoholType == "" {
		f.AlcoholType = DefaultAlcoholType
	}
	return f
}

// Values encodes the form the way the backend's edit endpoint expects it.
func (f EditForm) Values() url.Values {
	v := url.Values{}
	v.Set("title", f.Title)
	v.Set("price", f.Price)
	v.Set("available", boolText(f.Available))
	v.Set("vendor", f.Vendor)
	v.Set("alcohol_type", f.AlcoholType)
	v.Set("ignore_notifications", boolText(f.IgnoreNotifications))
	return v
}

// Apply copies the form's values onto p.
func (f EditForm) Apply(p *Product) {
	p.Title = f.Title
	p.Price = f.Price
	p.Available = f.Available
	p.Vendor = f.Vendor
	p.AlcoholType = f.AlcoholType
	p.IgnoreNotifications = f.IgnoreNotifications
}

// PatchIgnore sets the ignore flag of the record with the given id.
// It returns false when no resident record has that id.
func (s *State) PatchIgnore(id int64, ignore bool) bool {
	p := s.ByID(id)
	if p == nil {
		return false
	}
	p.IgnoreNotifications = ignore
	return true
}

// PatchEdit applies a submitted edit to the record with the form's id.
// The record keeps its position in both collections; the view is not
// re-filtered so an edited row does not vanish from under the user.
func (s *State) PatchEdit(f EditForm) bool {
	p := s.ByID(f.ID)
	if p == nil {
		return false
	}
	f.Apply(p)
	return true
}
