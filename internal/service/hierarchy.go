package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/laureon/labtrack/internal/database/repository"
)

// ErrInUse is returned when a delete or edit would break records that still
// depend on the target.
var ErrInUse = errors.New("record is in use")

// ValidationError carries a rule violation meant for the operator, as
// opposed to an infrastructure failure.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// HierarchyService enforces the location-configuration rules: which types
// may nest inside which, grid dimensioning, and protection of records that
// are still referenced.
type HierarchyService struct {
	Types     *repository.LocationTypeRepo
	Locations *repository.LocationRepo
	Spaces    *repository.SpaceRepo
}

// ---------------------------------------------------------------------------
// Location types
// ---------------------------------------------------------------------------

// CreateType validates and stores a new location type, returning its id.
func (s *HierarchyService) CreateType(ctx context.Context, t repository.LocationType) (string, error) {
	t.ID = uuid.NewString()
	if err := s.validateType(ctx, t); err != nil {
		return "", err
	}
	if err := s.Types.Insert(ctx, t); err != nil {
		return "", fmt.Errorf("create location type: %w", err)
	}
	return t.ID, nil
}

// UpdateType validates and stores changes to an existing type. Fields that
// are locked while the type is in use (grid dimensions, sample storage,
// removing an in-use parent link) reject the edit instead of silently
// reverting it.
func (s *HierarchyService) UpdateType(ctx context.Context, t repository.LocationType) error {
	current, err := s.Types.Get(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("load location type: %w", err)
	}
	if current == nil {
		return validationf("location type no longer exists")
	}
	if err := s.validateType(ctx, t); err != nil {
		return err
	}
	if err := s.checkTypeEditLocks(ctx, *current, t); err != nil {
		return err
	}
	if err := s.Types.Update(ctx, t); err != nil {
		return fmt.Errorf("update location type: %w", err)
	}
	return nil
}

// DeleteType removes a type that has no locations and no dependent types.
func (s *HierarchyService) DeleteType(ctx context.Context, id string) error {
	inUse, err := s.Types.InUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrInUse
	}
	return s.Types.Delete(ctx, id)
}

// TypesSorted returns all types topologically sorted so parents appear
// before the types nested inside them, name-ordered within each rank.
func (s *HierarchyService) TypesSorted(ctx context.Context) ([]repository.LocationType, error) {
	types, err := s.Types.List(ctx)
	if err != nil {
		return nil, err
	}
	return topoSortTypes(types), nil
}

func (s *HierarchyService) validateType(ctx context.Context, t repository.LocationType) error {
	if strings.TrimSpace(t.Name) == "" {
		return validationf("name is required")
	}
	existing, err := s.Types.GetByName(ctx, t.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != t.ID {
		return validationf("a location type named %q already exists", existing.Name)
	}

	if t.CanHaveSpaces {
		if t.SpaceRows == nil || t.SpaceCols == nil {
			return validationf("grid dimensions are required for a type with spaces")
		}
		if *t.SpaceRows < 1 || *t.SpaceCols < 1 {
			return validationf("grid dimensions must be at least 1x1")
		}
	} else if t.SpaceRows != nil || t.SpaceCols != nil {
		return validationf("grid dimensions must be empty for a type without spaces")
	}

	// A type may not nest, directly or transitively, inside itself.
	descendants, err := s.typeDescendants(ctx, t.ID)
	if err != nil {
		return err
	}
	for _, pid := range t.ParentTypeIDs {
		if pid == t.ID || descendants[pid] {
			return validationf("circular dependency: a descendant type cannot be a parent")
		}
	}
	return nil
}

// checkTypeEditLocks rejects edits to fields that are frozen once the type
// is in use.
func (s *HierarchyService) checkTypeEditLocks(ctx context.Context, current, next repository.LocationType) error {
	locations, err := s.Locations.List(ctx)
	if err != nil {
		return err
	}
	hasInstances := false
	for _, l := range locations {
		if l.TypeID == current.ID {
			hasInstances = true
			break
		}
	}
	if !hasInstances {
		return nil
	}

	if current.CanHaveSpaces != next.CanHaveSpaces ||
		!intPtrEq(current.SpaceRows, next.SpaceRows) ||
		!intPtrEq(current.SpaceCols, next.SpaceCols) {
		return validationf("grid settings are locked while locations of this type exist")
	}
	if current.CanStoreSamples && !next.CanStoreSamples {
		return validationf("sample storage cannot be disabled while locations of this type exist")
	}

	// Parent links still used by a nested location may not be removed.
	nextParents := make(map[string]bool, len(next.ParentTypeIDs))
	for _, pid := range next.ParentTypeIDs {
		nextParents[pid] = true
	}
	for _, pid := range current.ParentTypeIDs {
		if nextParents[pid] {
			continue
		}
		used, err := s.parentLinkUsed(ctx, current.ID, pid, locations)
		if err != nil {
			return err
		}
		if used {
			return validationf("cannot remove a parent type that nested locations still rely on")
		}
	}
	return nil
}

// parentLinkUsed reports whether any location of type typeID currently sits
// inside a location of type parentTypeID.
func (s *HierarchyService) parentLinkUsed(ctx context.Context, typeID, parentTypeID string, locations []repository.Location) (bool, error) {
	byID := make(map[string]repository.Location, len(locations))
	for _, l := range locations {
		byID[l.ID] = l
	}
	for _, l := range locations {
		if l.TypeID != typeID {
			continue
		}
		parent, err := s.effectiveParentOf(ctx, l, byID)
		if err != nil {
			return false, err
		}
		if parent != nil && parent.TypeID == parentTypeID {
			return true, nil
		}
	}
	return false, nil
}

// typeDescendants finds all transitive child types of the given type with an
// iterative walk over the parent links.
func (s *HierarchyService) typeDescendants(ctx context.Context, typeID string) (map[string]bool, error) {
	if typeID == "" {
		return map[string]bool{}, nil
	}
	types, err := s.Types.List(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[string][]string)
	for _, t := range types {
		for _, pid := range t.ParentTypeIDs {
			children[pid] = append(children[pid], t.ID)
		}
	}

	descendants := make(map[string]bool)
	queue := append([]string(nil), children[typeID]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if descendants[cur] {
			continue
		}
		descendants[cur] = true
		queue = append(queue, children[cur]...)
	}
	return descendants, nil
}

// topoSortTypes orders types parents-first. Cycles cannot be created through
// the validated write paths; any remainder is appended name-sorted so the
// result always contains every input.
func topoSortTypes(types []repository.LocationType) []repository.LocationType {
	byID := make(map[string]repository.LocationType, len(types))
	inDegree := make(map[string]int, len(types))
	children := make(map[string][]string)
	for _, t := range types {
		byID[t.ID] = t
		inDegree[t.ID] = len(t.ParentTypeIDs)
		for _, pid := range t.ParentTypeIDs {
			children[pid] = append(children[pid], t.ID)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sortTypeIDs(queue, byID)

	var out []repository.LocationType
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, byID[cur])

		next := append([]string(nil), children[cur]...)
		sortTypeIDs(next, byID)
		for _, child := range next {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(out) != len(types) {
		seen := make(map[string]bool, len(out))
		for _, t := range out {
			seen[t.ID] = true
		}
		var rest []repository.LocationType
		for _, t := range types {
			if !seen[t.ID] {
				rest = append(rest, t)
			}
		}
		sort.Slice(rest, func(i, j int) bool { return rest[i].Name < rest[j].Name })
		out = append(out, rest...)
	}
	return out
}

func sortTypeIDs(ids []string, byID map[string]repository.LocationType) {
	sort.Slice(ids, func(i, j int) bool { return byID[ids[i]].Name < byID[ids[j]].Name })
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

// CreateLocation validates and stores a new location. When spaceOf is
// non-nil the location is placed into that grid space instead of getting a
// direct parent.
func (s *HierarchyService) CreateLocation(ctx context.Context, l repository.Location, spaceOf *SpaceRef) (string, error) {
	l.ID = uuid.NewString()
	if err := s.validateLocation(ctx, l, spaceOf); err != nil {
		return "", err
	}
	if err := s.Locations.Insert(ctx, l); err != nil {
		return "", fmt.Errorf("create location: %w", err)
	}
	if spaceOf != nil {
		sp, err := s.Spaces.Ensure(ctx, nil, spaceOf.LocationID, spaceOf.Row, spaceOf.Col)
		if err != nil {
			return "", err
		}
		if err := s.Spaces.SetLocationOccupant(ctx, nil, sp.ID, l.ID); err != nil {
			return "", fmt.Errorf("occupy space: %w", err)
		}
	}
	return l.ID, nil
}

// UpdateLocation validates and stores changes to a location's name.
// Re-parenting is deliberately limited to the create flow.
func (s *HierarchyService) UpdateLocation(ctx context.Context, l repository.Location) error {
	existing, err := s.Locations.GetByName(ctx, l.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != l.ID {
		return validationf("a location named %q already exists", existing.Name)
	}
	return s.Locations.Update(ctx, l)
}

// DeleteLocation removes an unused location, vacating its space if any.
func (s *HierarchyService) DeleteLocation(ctx context.Context, id string) error {
	inUse, err := s.Locations.InUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrInUse
	}
	if err := s.Locations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	// The ON DELETE SET NULL on the occupant column has already vacated the
	// space; drop the now-empty row.
	return s.Spaces.DeleteVacated(ctx, nil)
}

// SpaceRef addresses one space of a grid-based location.
type SpaceRef struct {
	LocationID string
	Row        int
	Col        int
}

func (s *HierarchyService) validateLocation(ctx context.Context, l repository.Location, spaceOf *SpaceRef) error {
	if strings.TrimSpace(l.Name) == "" {
		return validationf("name is required")
	}
	existing, err := s.Locations.GetByName(ctx, l.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != l.ID {
		return validationf("a location named %q already exists", existing.Name)
	}

	lt, err := s.Types.Get(ctx, l.TypeID)
	if err != nil {
		return err
	}
	if lt == nil {
		return validationf("unknown location type")
	}

	hasParent := l.ParentID != nil
	hasSpace := spaceOf != nil
	if hasParent && hasSpace {
		return validationf("a location can have a parent location or a parent space, not both")
	}
	if lt.RootType() {
		if hasParent || hasSpace {
			return validationf("type %q cannot be nested inside another location", lt.Name)
		}
		return nil
	}
	if !hasParent && !hasSpace {
		return validationf("type %q must be nested inside one of its allowed parents", lt.Name)
	}

	allowed := make(map[string]bool, len(lt.ParentTypeIDs))
	for _, pid := range lt.ParentTypeIDs {
		allowed[pid] = true
	}

	if hasParent {
		parent, err := s.Locations.Get(ctx, *l.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return validationf("parent location no longer exists")
		}
		parentType, err := s.Types.Get(ctx, parent.TypeID)
		if err != nil {
			return err
		}
		if parentType == nil || !allowed[parentType.ID] {
			return validationf("type %q is not allowed inside %q", lt.Name, parent.Name)
		}
		if parentType.Gridded() {
			return validationf("%q is a grid container; assign a specific space within it", parent.Name)
		}
		return nil
	}

	host, err := s.Locations.Get(ctx, spaceOf.LocationID)
	if err != nil {
		return err
	}
	if host == nil {
		return validationf("parent location no longer exists")
	}
	hostType, err := s.Types.Get(ctx, host.TypeID)
	if err != nil {
		return err
	}
	if hostType == nil || !hostType.Gridded() {
		return validationf("%q has no spaces to assign", host.Name)
	}
	if !allowed[hostType.ID] {
		return validationf("type %q is not allowed inside %q", lt.Name, host.Name)
	}
	if spaceOf.Row < 1 || spaceOf.Row > *hostType.SpaceRows ||
		spaceOf.Col < 1 || spaceOf.Col > *hostType.SpaceCols {
		return validationf("space (%d,%d) is outside the %dx%d grid",
			spaceOf.Row, spaceOf.Col, *hostType.SpaceRows, *hostType.SpaceCols)
	}
	sp, err := s.Spaces.Ensure(ctx, nil, spaceOf.LocationID, spaceOf.Row, spaceOf.Col)
	if err != nil {
		return err
	}
	if sp.OccupantLocationID != nil || sp.OccupantSampleID != nil {
		return validationf("space (%d,%d) is already occupied", spaceOf.Row, spaceOf.Col)
	}
	return nil
}

// EffectiveParent returns the logical parent of a location: its direct
// parent, or the location owning the space it occupies. Nil for roots.
func (s *HierarchyService) EffectiveParent(ctx context.Context, l repository.Location) (*repository.Location, error) {
	return s.effectiveParentOf(ctx, l, nil)
}

func (s *HierarchyService) effectiveParentOf(ctx context.Context, l repository.Location, byID map[string]repository.Location) (*repository.Location, error) {
	if l.ParentID != nil {
		if byID != nil {
			if p, ok := byID[*l.ParentID]; ok {
				return &p, nil
			}
		}
		return s.Locations.Get(ctx, *l.ParentID)
	}
	sp, err := s.Spaces.ByLocationOccupant(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, nil
	}
	if byID != nil {
		if p, ok := byID[sp.LocationID]; ok {
			return &p, nil
		}
	}
	return s.Locations.Get(ctx, sp.LocationID)
}

// Path traces the hierarchy from the root down to the given location.
func (s *HierarchyService) Path(ctx context.Context, l repository.Location) ([]repository.Location, error) {
	var reversed []repository.Location
	seen := make(map[string]bool)
	cur := &l
	for cur != nil && !seen[cur.ID] {
		seen[cur.ID] = true
		reversed = append(reversed, *cur)
		parent, err := s.EffectiveParent(ctx, *cur)
		if err != nil {
			return nil, err
		}
		cur = parent
	}
	out := make([]repository.Location, len(reversed))
	for i, loc := range reversed {
		out[len(reversed)-1-i] = loc
	}
	return out, nil
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
