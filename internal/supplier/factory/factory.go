package factory

import (
	"fmt"
	"sync"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys"
	"bitbucket.org/crgw/booking-engine/internal/tools/redisfactory"
)

// Factory resolves a source tag to its adapter. Dispatch is by value so the
// orchestrator never inspects concrete types.
type Factory struct {
	redisFactory *redisfactory.Factory
	mu           sync.Mutex
	suppliers    map[string]any
}

// GetSupplier registers adapters lazily and is hit from concurrent request
// handlers, the registry is guarded.
func (f *Factory) GetSupplier(name string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.suppliers[name]

	if !ok {
		switch name {

		// Register all suppliers here
		case schema.SourceAdobe:
			f.suppliers[name] = adobe.New(f.redisFactory.ResponsesCacheClient())
		case schema.SourceGreenMotion:
			f.suppliers[name] = greenmotion.New(schema.SourceGreenMotion)
		case schema.SourceUSave:
			// usave rides the greenmotion webservice with its own rental codes
			f.suppliers[name] = greenmotion.New(schema.SourceUSave)
		case schema.SourceOkMobility:
			f.suppliers[name] = okmobility.New()
		case schema.SourceRenteon:
			f.suppliers[name] = renteon.New()
		case schema.SourceLocauto:
			f.suppliers[name] = locauto.New()
		case schema.SourceWheelsys:
			f.suppliers[name] = wheelsys.New(f.redisFactory.ResponsesCacheClient())
		default:
			return nil, fmt.Errorf("supplier %s not found", name)
		}
	}

	return f.suppliers[name], nil
}

func NewFactory(redisFactory *redisfactory.Factory) *Factory {
	return &Factory{
		redisFactory: redisFactory,
		suppliers:    make(map[string]any),
	}
}
