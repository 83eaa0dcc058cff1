package llm

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
)

// BootstrapProviders builds and registers every configured provider from the
// factory registry. Providers with missing keys or unknown types are skipped
// with a log line; the return value is the number registered.
func BootstrapProviders(o *Orchestrator, providers []config.ProviderConfig, log *zap.Logger) int {
	registered := 0
	validate := validator.New()

	for _, pCfg := range providers {
		if err := validate.Struct(&pCfg); err != nil {
			log.Warn("skipping provider with incomplete configuration",
				zap.String("type", pCfg.Type),
			)
			continue
		}

		factory, ok := Lookup(pCfg.Type)
		if !ok {
			log.Error("unknown provider type", zap.String("type", pCfg.Type))
			continue
		}

		p, err := factory(pCfg)
		if err != nil {
			log.Error("failed to initialize provider",
				zap.String("type", pCfg.Type),
				zap.Error(err),
			)
			continue
		}

		o.RegisterProvider(p)
		log.Info("registered provider",
			zap.String("type", p.Type()),
			zap.String("name", p.Name()),
			zap.Bool("model_cascade", p.SupportsFallback()),
		)
		registered++
	}

	if registered == 0 {
		log.Warn("no providers were registered, AI calls will fail")
	}

	return registered
}
