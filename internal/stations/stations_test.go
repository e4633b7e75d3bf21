package stations

import (
	"context"
	"errors"
	"testing"

	"alertaja/internal/models"
	"alertaja/internal/repository"
	"alertaja/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	stations []models.SafeStation
	err      error
	province string
}

func (f *fakeSource) ListVerified(ctx context.Context, province string) ([]models.SafeStation, error) {
	f.province = province
	return f.stations, f.err
}

func setupDirectory(t *testing.T) *Directory {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	kv := store.NewRedisKV(client, "@aj_", zap.NewNop())
	return NewDirectory(repository.NewStorage(kv, zap.NewNop()), zap.NewNop())
}

func TestDirectory_ListDefaults(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	stations := d.List(ctx)
	require.Len(t, stations, 6)

	s, err := d.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Hospital Josina Machel", s.Name)

	_, err = d.Get(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDirectory_AddCustom(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	s, err := d.AddCustom(ctx, CustomStationInput{
		Name:    "  Casa da Tia  ",
		Address: " Viana ",
		Phone:   "923111222",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Casa da Tia", s.Name)
	assert.Equal(t, "Viana", s.Address)
	assert.Equal(t, models.StationCustom, s.Type)
	assert.True(t, s.IsCustom)
	assert.Zero(t, s.Latitude)
	assert.Zero(t, s.Longitude)
	require.NotNil(t, s.Phone)
	assert.Equal(t, "923111222", *s.Phone)

	stations := d.List(ctx)
	require.Len(t, stations, 7)
	assert.Equal(t, s.ID, stations[6].ID)
}

func TestDirectory_AddCustom_Shelter(t *testing.T) {
	d := setupDirectory(t)

	s, err := d.AddCustom(context.Background(), CustomStationInput{
		Name:    "Abrigo Cazenga",
		Address: "Cazenga",
		Type:    models.StationShelter,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StationShelter, s.Type)
	assert.Nil(t, s.Phone)
}

func TestDirectory_AddCustom_Invalid(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CustomStationInput
		field string
	}{
		{"blank name", CustomStationInput{Name: "   ", Address: "Viana"}, "name"},
		{"blank address", CustomStationInput{Name: "Casa", Address: ""}, "address"},
		{"unknown type", CustomStationInput{Name: "Casa", Address: "Viana", Type: "bank"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.AddCustom(ctx, tt.input)
			require.Error(t, err)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Errors[0].Field)
		})
	}

	assert.Len(t, d.List(ctx), 6)
}

func TestDirectory_Remove(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	s, err := d.AddCustom(ctx, CustomStationInput{Name: "Casa", Address: "Viana"})
	require.NoError(t, err)

	require.NoError(t, d.Remove(ctx, s.ID))
	assert.Len(t, d.List(ctx), 6)

	err = d.Remove(ctx, s.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	err = d.Remove(ctx, "1")
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Len(t, d.List(ctx), 6)
}

func TestDirectory_Sync(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	custom, err := d.AddCustom(ctx, CustomStationInput{Name: "Casa", Address: "Viana"})
	require.NoError(t, err)

	src := &fakeSource{stations: []models.SafeStation{
		{ID: "v1", Name: "Hospital do Lubango", Address: "Lubango", Type: models.StationHospital, Latitude: -14.92, Longitude: 13.49},
	}}

	n, err := d.Sync(ctx, src, "Huíla")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Huíla", src.province)

	stations := d.List(ctx)
	require.Len(t, stations, 2)
	assert.Equal(t, "v1", stations[0].ID)
	assert.Equal(t, custom.ID, stations[1].ID)
}

func TestDirectory_Sync_EmptyKeepsCurrent(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	n, err := d.Sync(ctx, &fakeSource{}, "Bié")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, d.List(ctx), 6)
}

func TestDirectory_Sync_SourceError(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	_, err := d.Sync(ctx, &fakeSource{err: errors.New("connection refused")}, "")
	require.Error(t, err)
	assert.Len(t, d.List(ctx), 6)
}

func TestDirectory_Featured(t *testing.T) {
	d := setupDirectory(t)
	ctx := context.Background()

	featured := d.Featured(ctx, nil)
	require.Len(t, featured, 3)
	assert.Equal(t, []string{"1", "2", "3"}, ids(featured))

	// 马坦加附近：庇护所与警局最近
	near := d.Featured(ctx, &models.Coordinates{Latitude: -8.8381, Longitude: 13.2347})
	require.Len(t, near, 3)
	assert.ElementsMatch(t, []string{"1", "3"}, ids(near)[:2])
}

func TestDistanceKm(t *testing.T) {
	luanda := models.Coordinates{Latitude: -8.8383, Longitude: 13.2344}
	lubango := models.Coordinates{Latitude: -14.9177, Longitude: 13.4925}

	assert.Zero(t, DistanceKm(luanda, luanda))
	assert.InDelta(t, 676, DistanceKm(luanda, lubango), 5)
	assert.InDelta(t, DistanceKm(luanda, lubango), DistanceKm(lubango, luanda), 1e-9)
}

func TestNearest_UnknownCoordinatesLast(t *testing.T) {
	stations := []models.SafeStation{
		{ID: "custom", Type: models.StationCustom},
		{ID: "far", Latitude: -14.9, Longitude: 13.5},
		{ID: "near", Latitude: -8.84, Longitude: 13.23},
	}

	got := Nearest(stations, models.Coordinates{Latitude: -8.83, Longitude: 13.23}, 10)
	assert.Equal(t, []string{"near", "far", "custom"}, ids(got))

	got = Nearest(stations, models.Coordinates{Latitude: -8.83, Longitude: 13.23}, 1)
	assert.Equal(t, []string{"near"}, ids(got))

	// 原切片顺序不变
	assert.Equal(t, "custom", stations[0].ID)
}

func TestFilterByType(t *testing.T) {
	all := models.DefaultSafeStations()

	assert.Len(t, FilterByType(all, models.StationHospital), 2)
	assert.Len(t, FilterByType(all, models.StationPolice), 2)
	assert.Empty(t, FilterByType(all, models.StationCustom))
	assert.Len(t, FilterByType(all, ""), 6)
}

func ids(stations []models.SafeStation) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.ID
	}
	return out
}
