package modem

import (
	"fmt"
	"time"
)

// Config holds the session parameters shared by transmitter and receiver.
// It is read-only once a Modem has been built from it.
type Config struct {
	Scheme         Scheme
	Modulation     Modulation
	BitsPerSymbol  int // zero means the modulation's own
	USF            int // samples per symbol
	SampleRate     float64
	Bands          BandPlan
	Amplitude      float64 // peak of the transmitted sequence
	FilterSpan     int     // RRC length in symbols
	RollOff        float64
	PreambleLength int
	PreambleSeed   uint8
}

// DefaultConfig returns a single-band QPSK session over three 2 kHz bands
// at 22.05 kHz.
func DefaultConfig() Config {
	return Config{
		Scheme:        SchemeSingle,
		Modulation:    ModQPSK,
		BitsPerSymbol: 2,
		USF:           22,
		SampleRate:    22050,
		Bands: BandPlan{
			{Low: 1000, High: 3000},
			{Low: 3000, High: 5000},
			{Low: 5000, High: 7000},
		},
		Amplitude:      1.0,
		FilterSpan:     16,
		RollOff:        0.22,
		PreambleLength: 63,
		PreambleSeed:   1,
	}
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	bps := c.Modulation.BitsPerSymbol()
	switch c.Modulation {
	case ModQPSK, Mod16QAM, Mod64QAM:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedModulation, int(c.Modulation))
	}
	if c.BitsPerSymbol != 0 && c.BitsPerSymbol != bps {
		return fmt.Errorf("%w: %d bits for %v (%d points)", ErrBitsPerSymbol, c.BitsPerSymbol, c.Modulation, 1<<bps)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %g", c.SampleRate)
	}
	if c.USF < 1 {
		return fmt.Errorf("%w: usf %d", ErrFilter, c.USF)
	}
	if c.Amplitude <= 0 {
		return fmt.Errorf("invalid amplitude %g", c.Amplitude)
	}
	if c.PreambleLength < 1 {
		return fmt.Errorf("invalid preamble length %d", c.PreambleLength)
	}
	if err := c.Bands.Validate(c.SampleRate); err != nil {
		return err
	}
	if _, err := newStrategy(c.Scheme, len(c.Bands)); err != nil {
		return err
	}
	_, err := RootRaisedCosine(c.FilterSpan, c.USF, c.RollOff)
	return err
}

// Modem runs the transmit and receive pipelines for one session
// configuration. It is immutable after New and safe for concurrent use.
type Modem struct {
	cfg           Config
	strategy      schemeStrategy
	constellation *Constellation
	filter        []float64
	matched       []complex128
	preamble      []complex128
	shaped        []complex128
	timing        Timing
	source        PreambleSource
	observers     []Observer
}

// Option configures a Modem.
type Option func(*Modem)

// WithObserver registers an observer for pipeline events.
func WithObserver(obs Observer) Option {
	return func(m *Modem) {
		m.observers = append(m.observers, obs)
	}
}

// WithPreamble replaces the default LFSR preamble source.
func WithPreamble(src PreambleSource) Option {
	return func(m *Modem) {
		m.source = src
	}
}

// New validates cfg and precomputes the shaping filter, the preamble and
// its shaped form.
func New(cfg Config, opts ...Option) (*Modem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BitsPerSymbol == 0 {
		cfg.BitsPerSymbol = cfg.Modulation.BitsPerSymbol()
	}

	m := &Modem{
		cfg:    cfg,
		source: LFSRPreamble{Seed: cfg.PreambleSeed},
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	if m.strategy, err = newStrategy(cfg.Scheme, len(cfg.Bands)); err != nil {
		return nil, err
	}
	if m.constellation, err = NewConstellation(cfg.Modulation); err != nil {
		return nil, err
	}
	if m.filter, err = RootRaisedCosine(cfg.FilterSpan, cfg.USF, cfg.RollOff); err != nil {
		return nil, err
	}
	m.matched = MatchedFilter(m.filter)

	m.preamble = m.source.Preamble(cfg.PreambleLength)
	if len(m.preamble) != cfg.PreambleLength {
		return nil, fmt.Errorf("preamble source returned %d symbols, want %d", len(m.preamble), cfg.PreambleLength)
	}
	m.shaped = Upfirdn(m.filter, m.preamble, cfg.USF)
	m.timing = Timing{
		USF:             cfg.USF,
		Half:            cfg.FilterSpan * cfg.USF / 2,
		PreambleSymbols: cfg.PreambleLength,
		ShapedLen:       len(m.shaped),
	}
	return m, nil
}

// WithObservers returns a copy of m that also reports to obs.
func (m *Modem) WithObservers(obs ...Observer) *Modem {
	c := *m
	c.observers = append(append([]Observer(nil), m.observers...), obs...)
	return &c
}

// Config returns the effective configuration.
func (m *Modem) Config() Config { return m.cfg }

// Constellation returns the session constellation.
func (m *Modem) Constellation() *Constellation { return m.constellation }

// Preamble returns a copy of the reference symbols.
func (m *Modem) Preamble() []complex128 {
	return append([]complex128(nil), m.preamble...)
}

// ShapedPreamble returns a copy of the pulse-shaped preamble the receiver
// synchronizes against.
func (m *Modem) ShapedPreamble() []complex128 {
	return append([]complex128(nil), m.shaped...)
}

// Transmission is the result of one transmit pass.
type Transmission struct {
	Bits    []byte  // message bits before partitioning
	Streams [][]int // constellation indices per stream
	Samples []float64
}

// Transmit encodes a 7-bit ASCII message into passband samples.
func (m *Modem) Transmit(msg string) (*Transmission, error) {
	bits, err := TextToBits(msg)
	if err != nil {
		return nil, err
	}
	return m.TransmitBits(bits)
}

// TransmitBits encodes a raw bit sequence into passband samples.
func (m *Modem) TransmitBits(bits []byte) (*Transmission, error) {
	bps := m.cfg.BitsPerSymbol

	start := time.Now()
	streams, err := m.strategy.partition(bits, bps)
	if err != nil {
		return nil, err
	}
	m.emit(StagePartition, start, len(streams), nil)

	tx := &Transmission{
		Bits:    append([]byte(nil), bits...),
		Streams: make([][]int, len(streams)),
	}

	start = time.Now()
	frames := make([][]complex128, len(streams))
	for i, s := range streams {
		tx.Streams[i] = groupIndices(s, bps)
		frames[i] = AssembleFrame(m.preamble, m.constellation.MapIndices(tx.Streams[i]))
	}
	m.emit(StageFrame, start, len(frames[0]), nil)

	start = time.Now()
	shaped := make([][]complex128, len(frames))
	for i, f := range frames {
		shaped[i] = Upfirdn(m.filter, f, m.cfg.USF)
	}
	m.emit(StageShape, start, len(shaped[0]), nil)

	start = time.Now()
	passband, err := Modulate(shaped, m.strategy.carriers(m.cfg.Bands), m.cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	m.emit(StageModulate, start, len(passband), nil)

	start = time.Now()
	if tx.Samples, err = Scale(passband, m.cfg.Amplitude); err != nil {
		return nil, err
	}
	m.emit(StageScale, start, len(tx.Samples), nil)
	return tx, nil
}

// Reception is the result of one receive pass.
type Reception struct {
	RemovedBand int
	Carrier     float64
	Delay       int
	Gain        float64
	Symbols     []complex128 // gain-corrected decision inputs
	Indices     []int
	Bits        []byte
	Message     string
}

// Receive recovers the message from passband samples that went through a
// channel suppressing one band of the plan.
func (m *Modem) Receive(samples []float64) (*Reception, error) {
	rx := &Reception{}

	start := time.Now()
	removed, err := DetectRemovedBand(samples, m.cfg.SampleRate, m.cfg.Bands)
	if err != nil {
		return nil, err
	}
	rx.RemovedBand = removed
	m.emit(StageDetect, start, len(samples), removed)

	if rx.Carrier, err = m.strategy.demodCarrier(m.cfg.Bands, removed); err != nil {
		return nil, err
	}

	start = time.Now()
	baseband := Demodulate(samples, rx.Carrier, m.cfg.SampleRate)
	m.emit(StageDemodulate, start, len(baseband), rx.Carrier)

	start = time.Now()
	y := Convolve(baseband, m.matched)
	m.emit(StageMatchedFilter, start, len(y), nil)

	start = time.Now()
	if rx.Delay, err = Synchronize(y, m.shaped); err != nil {
		return nil, err
	}
	m.emit(StageSync, start, len(m.shaped), rx.Delay)

	start = time.Now()
	cropped, err := m.timing.Crop(y, rx.Delay)
	if err != nil {
		return nil, err
	}
	rx.Symbols = Decimate(cropped, m.cfg.USF)
	rx.Gain = EstimateGain(y, m.preamble, m.timing, rx.Delay)
	if rx.Gain > 0 {
		inv := complex(1/rx.Gain, 0)
		for i := range rx.Symbols {
			rx.Symbols[i] *= inv
		}
	}
	m.emit(StageSample, start, len(rx.Symbols), rx.Gain)

	start = time.Now()
	if rx.Indices, rx.Bits, err = DecodeSymbols(m.constellation, rx.Symbols); err != nil {
		return nil, err
	}
	rx.Message = BitsToText(rx.Bits)
	m.emit(StageDecode, start, len(rx.Bits), nil)
	return rx, nil
}

func (m *Modem) emit(stage Stage, start time.Time, n int, v any) {
	if len(m.observers) == 0 {
		return
	}
	e := Event{Stage: stage, Len: n, Value: v, Elapsed: time.Since(start)}
	for _, obs := range m.observers {
		obs(e)
	}
}
