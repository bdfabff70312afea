package predict_test

import (
	"testing"

	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/internal/predict/predicttest"
)

func TestMemoryStore(t *testing.T) {
	predicttest.TestStore(t, func(*testing.T) predict.Store {
		return predict.NewMemoryStore()
	})
}
