package seed

import (
	"fmt"
	"log"

	"github.com/spokeworks/wheelsmith/internal/models"
	"github.com/spokeworks/wheelsmith/internal/store"
)

var sampleHubs = []models.Hub{
	{Make: "Shimano", Model: "Alfine SG-S700", Type: "rear", OLD: 135,
		LeftFlangeDiameter: 92.6, RightFlangeDiameter: 92.6,
		LeftFlangeOffset: 25.5, RightFlangeOffset: 31.8, SpokeHoleDiameter: 2.9, SpokeHoles: 36},
	{Make: "Shimano", Model: "DH-UR708-3D", Type: "front", OLD: 100,
		LeftFlangeDiameter: 61, RightFlangeDiameter: 61,
		LeftFlangeOffset: 29.5, RightFlangeOffset: 22.5, SpokeHoleDiameter: 2.0, SpokeHoles: 36},
	{Make: "Shimano", Model: "XT FH-M756A", Type: "rear", OLD: 135,
		LeftFlangeDiameter: 61, RightFlangeDiameter: 61,
		LeftFlangeOffset: 34, RightFlangeOffset: 23.4, SpokeHoleDiameter: 2.6, SpokeHoles: 36},
	{Make: "Hope", Model: "Pro 4 Boost", Type: "front", OLD: 110,
		LeftFlangeDiameter: 57, RightFlangeDiameter: 57,
		LeftFlangeOffset: 30, RightFlangeOffset: 22, SpokeHoleDiameter: 2.6, SpokeHoles: 32},
	{Make: "Shimano", Model: "Deore HB-M6000", Type: "front", OLD: 100,
		LeftFlangeDiameter: 44, RightFlangeDiameter: 44,
		LeftFlangeOffset: 24.5, RightFlangeOffset: 35.7, SpokeHoleDiameter: 2.6, SpokeHoles: 36},
}

var sampleRims = []models.Rim{
	{Make: "Ryde", Model: "Andra 30", Type: "symmetric", ERD: 605.4, OSB: 0,
		InnerWidth: 20, OuterWidth: 30, Holes: 36, Material: "aluminum"},
	{Make: "Mavic", Model: "Open Pro", Type: "symmetric", ERD: 610, OSB: 0,
		InnerWidth: 17, OuterWidth: 23, Holes: 32, Material: "aluminum"},
	{Make: "DT Swiss", Model: "XM 481", Type: "symmetric", ERD: 597, OSB: 0,
		InnerWidth: 25, OuterWidth: 30, Holes: 32, Material: "aluminum"},
}

var sampleNipples = []models.Nipple{
	{Material: "brass", Diameter: 2.0, Length: 12, Color: "silver"},
	{Material: "brass", Diameter: 2.0, Length: 14, Color: "black"},
	{Material: "aluminum", Diameter: 2.0, Length: 12, Color: "red"},
}

// Components seeds the sample component library. Idempotent: skipped when
// any hub already exists.
func Components(st *store.Store) error {
	count, err := st.CountHubs()
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("seed: component library already populated, skipping")
		return nil
	}

	for _, h := range sampleHubs {
		if _, err := st.CreateHub(h); err != nil {
			return fmt.Errorf("seed hub %s %s: %w", h.Make, h.Model, err)
		}
	}
	for _, r := range sampleRims {
		if _, err := st.CreateRim(r); err != nil {
			return fmt.Errorf("seed rim %s %s: %w", r.Make, r.Model, err)
		}
	}
	for _, n := range sampleNipples {
		if _, err := st.CreateNipple(n); err != nil {
			return fmt.Errorf("seed nipple %s %.1fmm: %w", n.Material, n.Diameter, err)
		}
	}

	log.Printf("seed: %d hubs, %d rims, %d nipples", len(sampleHubs), len(sampleRims), len(sampleNipples))
	return nil
}
