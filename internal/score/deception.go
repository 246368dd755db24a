package score

import (
	"strings"

	"github.com/ppiankov/greenlens/internal/model"
)

// DeceptionTypes is the ordered set of deception types found in one analysis
type DeceptionTypes struct {
	Primary model.DeceptionType
	All     []model.DeceptionType
}

// Has reports whether t was detected
func (d DeceptionTypes) Has(t model.DeceptionType) bool {
	for _, x := range d.All {
		if x == t {
			return true
		}
	}
	return false
}

// MajorityType determines the text-level deception type by majority vote of
// claim types. Ties go to the type encountered first in claim order.
func (s *Scorer) MajorityType(claims []model.Claim) model.DeceptionType {
	if len(claims) == 0 {
		return model.DeceptionNone
	}

	counts := make(map[model.ClaimType]int)
	var order []model.ClaimType
	for _, c := range claims {
		t := c.Type
		if t == "" {
			t = model.ClaimTypeUnknown
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	best := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}

	if d, ok := s.cfg.TypeMap[best]; ok {
		return d
	}
	return model.DeceptionMixed
}

// IdentifyTypes collects every deception type present across claims, visual
// indicators and certifications. The set keeps insertion order (claims first,
// then visual, then certifications) and Primary is its first element.
func (s *Scorer) IdentifyTypes(claims []model.Claim, cv *model.CVResult) DeceptionTypes {
	set := newOrderedSet()

	for _, c := range claims {
		category := strings.ToLower(c.Category)

		if c.Type == model.ClaimTypeEnvironmental || strings.Contains(category, "carbon") {
			set.add(model.DeceptionGreenwashing)
		}
		if strings.Contains(category, "material") || strings.Contains(category, "reduction") {
			set.add(model.DeceptionBrownwashing)
		}
		if c.Type == model.ClaimTypeSocial {
			set.add(model.DeceptionBluewashing)
		}
		if c.Type == model.ClaimTypeCertification {
			set.add(model.DeceptionCertificationFraud)
		}
		if c.VaguenessScore > s.cfg.VaguenessThreshold {
			set.add(model.DeceptionVagueClaims)
		}
	}

	if cv != nil {
		if cv.VisualGreenwashing.ExcessiveGreen || cv.VisualGreenwashing.NatureImagery {
			set.add(model.DeceptionVisual)
		}
		if len(cv.FakeCertifications()) > 0 {
			set.add(model.DeceptionFakeCertifications)
		}
	}

	result := DeceptionTypes{
		Primary: model.DeceptionNone,
		All:     set.items,
	}
	if len(set.items) > 0 {
		result.Primary = set.items[0]
	}
	return result
}

type orderedSet struct {
	seen  map[model.DeceptionType]bool
	items []model.DeceptionType
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[model.DeceptionType]bool)}
}

func (o *orderedSet) add(t model.DeceptionType) {
	if o.seen[t] {
		return
	}
	o.seen[t] = true
	o.items = append(o.items, t)
}
