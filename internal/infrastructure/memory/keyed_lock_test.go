package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sylistock-api/internal/infrastructure/memory"
)

func TestKeyedMutex_ExcluyeMismaClave(t *testing.T) {
	km := memory.NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "m1/p1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = km.Lock(ctx, "m1/p1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotente

	again, err := km.Lock(context.Background(), "m1/p1")
	require.NoError(t, err)
	again()
	assert.Equal(t, 0, km.Len(), "las entradas sin uso se liberan")
}

func TestKeyedMutex_ClavesDistintasNoSeBloquean(t *testing.T) {
	km := memory.NewKeyedMutex()
	u1, err := km.Lock(context.Background(), "m1/p1")
	require.NoError(t, err)
	defer u1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u2, err := km.Lock(ctx, "m1/p2")
	require.NoError(t, err)
	u2()
}

func TestKeyedMutex_EsperaHastaLiberar(t *testing.T) {
	km := memory.NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "k")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := km.Lock(context.Background(), "k")
		if err == nil {
			u()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("no debe obtener el bloqueo mientras está tomado")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("el bloqueo debió liberarse")
	}
}
