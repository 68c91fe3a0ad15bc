package bankcache

import (
	"sincresample/pkg/resampler"
	"sincresample/pkg/window"
)

// KeyFor builds a cache Key from the construction parameters of a filter
// bank, after rounding SincLen the same way resampler.NewFilterBank does.
func KeyFor(params resampler.Parameters) Key {
	sincLen := 8 * ((params.SincLen + 7) / 8)
	if sincLen <= 0 {
		sincLen = 8
	}
	return Key{
		SincLen:            sincLen,
		OversamplingFactor: params.OversamplingFactor,
		FCutoff:            params.FCutoff,
		Window:             uint8(params.Window),
	}
}

// ToFilterBank reconstructs a resampler.FilterBank[T] from a decoded cache
// entry, without re-tabulating the cosine-sum window.
func ToFilterBank[T resampler.Sample](b *Bank) *resampler.FilterBank[T] {
	taps := make([][]T, b.Key.OversamplingFactor)
	for k := range taps {
		row := b.Row(k)
		converted := make([]T, len(row))
		for i, v := range row {
			converted[i] = T(v)
		}
		taps[k] = converted
	}
	return resampler.NewFilterBankFromTaps[T](taps, b.Key.SincLen, b.Key.OversamplingFactor)
}

// FromFilterBank flattens a resampler.FilterBank[T] into a cache Bank ready
// to be written with Writer.WriteBank.
func FromFilterBank[T resampler.Sample](bank *resampler.FilterBank[T], fCutoff float64, win window.Kind) *Bank {
	sincLen := bank.Len()
	oversampling := bank.NbrSincs()
	flat := make([]float32, 0, sincLen*oversampling)
	for k := 0; k < oversampling; k++ {
		for _, v := range bank.Taps()[k] {
			flat = append(flat, float32(v))
		}
	}
	return &Bank{
		Key: Key{
			SincLen:            sincLen,
			OversamplingFactor: oversampling,
			FCutoff:            fCutoff,
			Window:             uint8(win),
		},
		Taps: flat,
	}
}
