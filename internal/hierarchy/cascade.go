package hierarchy

import "context"

// Codes is the administrative chain carried by one record. "" means absent.
type Codes struct {
	Provinsi  string
	KabKota   string
	Kecamatan string
	KelDes    string
}

func (c Codes) get(l Level) string {
	switch l {
	case Regency:
		return c.KabKota
	case District:
		return c.Kecamatan
	case Village:
		return c.KelDes
	}
	return ""
}

func (c *Codes) set(l Level, v string) {
	switch l {
	case Regency:
		c.KabKota = v
	case District:
		c.Kecamatan = v
	case Village:
		c.KelDes = v
	}
}

func (c Codes) parentOf(l Level) string {
	if l == Regency {
		return c.Provinsi
	}
	return c.get(l - 1)
}

// Normalize applies NormalizeCode to every level.
func (c Codes) Normalize() Codes {
	return Codes{
		Provinsi:  NormalizeCode(c.Provinsi),
		KabKota:   NormalizeCode(c.KabKota),
		Kecamatan: NormalizeCode(c.Kecamatan),
		KelDes:    NormalizeCode(c.KelDes),
	}
}

// FillParents derives absent ancestors from the prefix of a present descendant code.
// Codes that are too short to carry a prefix leave the ancestor absent.
func (c Codes) FillParents() Codes {
	for _, l := range []Level{Village, District, Regency} {
		v := c.get(l)
		if v == "" {
			continue
		}
		if l == Regency {
			if c.Provinsi == "" {
				c.Provinsi = parentPrefix(v, 0)
			}
			continue
		}
		if c.get(l-1) == "" {
			c.set(l-1, parentPrefix(v, l-1))
		}
	}
	return c
}

// Cascade fills every absent level top-down. A code assigned at one level becomes the parent
// scope of the next within the same call; a level that stays absent leaves everything below it
// absent too. Provided codes are never replaced.
func (a *Assigner) Cascade(ctx context.Context, entityKey string, in Codes) (Codes, error) {
	out := in.Normalize().FillParents()
	for _, l := range []Level{Regency, District, Village} {
		if out.get(l) != "" {
			continue
		}
		v, err := a.Assign(ctx, entityKey, out.parentOf(l), l)
		if err != nil {
			return out, err
		}
		out.set(l, v)
	}
	return out, nil
}
