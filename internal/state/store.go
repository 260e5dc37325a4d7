package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iwvelando/carcost/internal/config"
	"go.uber.org/zap"
)

// ChangeFunc is called with a copy of the state after every change.
type ChangeFunc func(conf config.Configuration)

// Store holds the mutable state. Every mutation runs the registered change
// hooks once the store is unlocked. Hooks see snapshots in mutation order and
// must not call back into the store.
type Store struct {
	mu      sync.Mutex
	hookMu  sync.Mutex
	conf    *config.Configuration
	hooks   []ChangeFunc
	removed *removedCar
}

type removedCar struct {
	index int
	car   config.Car
}

// NewStore wraps conf, or the default state when conf is nil.
func NewStore(conf *config.Configuration) *Store {
	if conf == nil {
		conf = config.DefaultConfiguration()
	}
	conf.Normalize()
	return &Store{conf: conf}
}

// OnChange registers a hook run after every change.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// PersistOnChange returns a hook that saves the state through p.
func PersistOnChange(ctx context.Context, logger *zap.Logger, p Persister) ChangeFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(conf config.Configuration) {
		data, err := Marshal(&conf)
		if err == nil {
			err = p.Save(ctx, data)
		}
		if err != nil {
			logger.Error("failed to persist state",
				zap.String("op", "state.PersistOnChange"),
				zap.Error(err),
			)
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() config.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneConfiguration(s.conf)
}

// Replace swaps in a whole new state, for example one decoded from a share token.
func (s *Store) Replace(conf *config.Configuration) {
	if conf == nil {
		conf = config.DefaultConfiguration()
	}
	_ = s.mutate(func(c *config.Configuration) error {
		next := cloneConfiguration(conf)
		next.Normalize()
		*c = next
		s.removed = nil
		return nil
	})
}

// AddCar appends a default car labelled by its position.
func (s *Store) AddCar() config.Car {
	var added config.Car
	_ = s.mutate(func(c *config.Configuration) error {
		added = config.DefaultCar(fmt.Sprintf("Car %d", len(c.Cars)+1), c.ReferenceTime().Year())
		c.Cars = append(c.Cars, added)
		return nil
	})
	return cloneCar(added)
}

// DuplicateCar appends a copy of a car with fresh IDs.
func (s *Store) DuplicateCar(id string) (config.Car, error) {
	var copied config.Car
	err := s.mutate(func(c *config.Configuration) error {
		index, err := findCar(c, id)
		if err != nil {
			return err
		}
		copied = cloneCar(c.Cars[index])
		copied.ID = config.GenerateID()
		copied.Label = c.Cars[index].Label + " (Copy)"
		for i := range copied.Scenarios {
			copied.Scenarios[i].ID = config.GenerateID()
		}
		c.Cars = append(c.Cars, copied)
		return nil
	})
	return cloneCar(copied), err
}

// RemoveCar deletes a car. The most recent removal can be reverted with UndoRemoveCar.
func (s *Store) RemoveCar(id string) error {
	return s.mutate(func(c *config.Configuration) error {
		index, err := findCar(c, id)
		if err != nil {
			return err
		}
		s.removed = &removedCar{index: index, car: c.Cars[index]}
		c.Cars = append(c.Cars[:index:index], c.Cars[index+1:]...)
		return nil
	})
}

// UndoRemoveCar puts the most recently removed car back where it was.
func (s *Store) UndoRemoveCar() (config.Car, bool) {
	var restored config.Car
	err := s.mutate(func(c *config.Configuration) error {
		if s.removed == nil {
			return ErrNotFound
		}
		index := s.removed.index
		if index > len(c.Cars) {
			index = len(c.Cars)
		}
		restored = s.removed.car
		c.Cars = append(c.Cars[:index:index], append([]config.Car{restored}, c.Cars[index:]...)...)
		s.removed = nil
		return nil
	})
	if err != nil {
		return config.Car{}, false
	}
	return cloneCar(restored), true
}

// UpdateCar applies fn to a car. The car's ID cannot be changed.
func (s *Store) UpdateCar(id string, fn func(car *config.Car)) error {
	return s.mutate(func(c *config.Configuration) error {
		index, err := findCar(c, id)
		if err != nil {
			return err
		}
		car := &c.Cars[index]
		fn(car)
		car.ID = id
		car.ActiveScenarioIndex = clampActive(car.ActiveScenarioIndex, len(car.Scenarios))
		return nil
	})
}

// SetOverrides replaces a car's setting overrides.
func (s *Store) SetOverrides(id string, overrides config.CarOverrides) error {
	return s.UpdateCar(id, func(car *config.Car) {
		car.Overrides = overrides
	})
}

// AddScenario appends a default scenario to a car and selects it.
func (s *Store) AddScenario(carID string) (config.FinancingScenario, error) {
	var added config.FinancingScenario
	err := s.mutate(func(c *config.Configuration) error {
		index, err := findCar(c, carID)
		if err != nil {
			return err
		}
		car := &c.Cars[index]
		added = config.DefaultScenario(fmt.Sprintf("Scenario %d", len(car.Scenarios)+1))
		car.Scenarios = append(car.Scenarios, added)
		car.ActiveScenarioIndex = len(car.Scenarios) - 1
		return nil
	})
	return added, err
}

// RemoveScenario deletes a scenario. A car keeps at least one scenario.
func (s *Store) RemoveScenario(carID, scenarioID string) error {
	return s.mutate(func(c *config.Configuration) error {
		index, err := findCar(c, carID)
		if err != nil {
			return err
		}
		car := &c.Cars[index]
		position := findScenario(car, scenarioID)
		if position < 0 {
			return fmt.Errorf("scenario %s: %w", scenarioID, ErrNotFound)
		}
		if len(car.Scenarios) == 1 {
			return errors.New("cannot remove the only financing scenario")
		}
		car.Scenarios = append(car.Scenarios[:position:position], car.Scenarios[position+1:]...)
		car.ActiveScenarioIndex = clampActive(car.ActiveScenarioIndex, len(car.Scenarios))
		return nil
	})
}

// SelectScenario makes the scenario at index the car's active one.
func (s *Store) SelectScenario(carID string, index int) error {
	return s.mutate(func(c *config.Configuration) error {
		carIndex, err := findCar(c, carID)
		if err != nil {
			return err
		}
		car := &c.Cars[carIndex]
		if index < 0 || index >= len(car.Scenarios) {
			return fmt.Errorf("scenario index %d out of range for car %s", index, carID)
		}
		car.ActiveScenarioIndex = index
		return nil
	})
}

// UpdateScenario applies fn to one scenario of a car. The scenario's ID cannot be changed.
func (s *Store) UpdateScenario(carID, scenarioID string, fn func(scenario *config.FinancingScenario)) error {
	return s.mutate(func(c *config.Configuration) error {
		index, err := findCar(c, carID)
		if err != nil {
			return err
		}
		car := &c.Cars[index]
		position := findScenario(car, scenarioID)
		if position < 0 {
			return fmt.Errorf("scenario %s: %w", scenarioID, ErrNotFound)
		}
		fn(&car.Scenarios[position])
		car.Scenarios[position].ID = scenarioID
		return nil
	})
}

// UpdateSettings applies fn to the shared settings.
func (s *Store) UpdateSettings(fn func(settings *config.Settings)) {
	_ = s.mutate(func(c *config.Configuration) error {
		fn(&c.Settings)
		return nil
	})
}

// ResetSettings restores the default settings but keeps the chosen province.
func (s *Store) ResetSettings() {
	s.UpdateSettings(func(settings *config.Settings) {
		province := settings.Province
		*settings = config.DefaultSettings()
		settings.Province = province
	})
}

func (s *Store) mutate(fn func(c *config.Configuration) error) error {
	s.mu.Lock()
	if err := fn(s.conf); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := cloneConfiguration(s.conf)
	hooks := append([]ChangeFunc(nil), s.hooks...)
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(cloneConfiguration(&snapshot))
	}
	return nil
}

func findCar(c *config.Configuration, id string) (int, error) {
	index := c.FindCar(id)
	if index < 0 {
		return -1, fmt.Errorf("car %s: %w", id, ErrNotFound)
	}
	return index, nil
}

func findScenario(car *config.Car, id string) int {
	for i := range car.Scenarios {
		if car.Scenarios[i].ID == id {
			return i
		}
	}
	return -1
}

func clampActive(index, length int) int {
	if index >= length {
		index = length - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}

func cloneConfiguration(conf *config.Configuration) config.Configuration {
	out := *conf
	out.Cars = make([]config.Car, len(conf.Cars))
	for i, car := range conf.Cars {
		out.Cars[i] = cloneCar(car)
	}
	return out
}

func cloneCar(car config.Car) config.Car {
	out := car
	out.Scenarios = append([]config.FinancingScenario(nil), car.Scenarios...)
	out.Overrides = config.CarOverrides{
		AnnualKm:    clonePtr(car.Overrides.AnnualKm),
		IncludeFuel: clonePtr(car.Overrides.IncludeFuel),
		MaxCarAge:   clonePtr(car.Overrides.MaxCarAge),
		MileageCap:  clonePtr(car.Overrides.MileageCap),
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
