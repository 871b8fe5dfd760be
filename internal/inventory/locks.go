// Package inventory enforces component-library integrity rules.
package inventory

import (
	"fmt"

	"github.com/spokeworks/wheelsmith/internal/models"
)

// ComponentKind names a component-library table.
type ComponentKind string

const (
	KindHub    ComponentKind = "hub"
	KindRim    ComponentKind = "rim"
	KindSpoke  ComponentKind = "spoke"
	KindNipple ComponentKind = "nipple"
)

// BuildFinder is the slice of the store the lock check needs.
type BuildFinder interface {
	BuildsUsingHub(id string) ([]models.WheelBuild, error)
	BuildsUsingRim(id string) ([]models.WheelBuild, error)
	BuildsUsingSpoke(id string) ([]models.WheelBuild, error)
	BuildsUsingNipple(id string) ([]models.WheelBuild, error)
}

// LockStatus reports whether a component is referenced by any build, and
// by which. Locked components must not be deleted.
type LockStatus struct {
	Locked bool
	Builds []string
}

// CheckLocked looks up the builds referencing a component.
func CheckLocked(finder BuildFinder, kind ComponentKind, id string) (LockStatus, error) {
	var (
		builds []models.WheelBuild
		err    error
	)
	switch kind {
	case KindHub:
		builds, err = finder.BuildsUsingHub(id)
	case KindRim:
		builds, err = finder.BuildsUsingRim(id)
	case KindSpoke:
		builds, err = finder.BuildsUsingSpoke(id)
	case KindNipple:
		builds, err = finder.BuildsUsingNipple(id)
	default:
		return LockStatus{}, fmt.Errorf("unknown component kind %q", kind)
	}
	if err != nil {
		return LockStatus{}, fmt.Errorf("find builds using %s %s: %w", kind, id, err)
	}

	status := LockStatus{Locked: len(builds) > 0}
	for _, b := range builds {
		status.Builds = append(status.Builds, b.Name)
	}
	return status, nil
}
