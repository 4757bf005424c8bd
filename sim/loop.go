package sim

import (
	"math"
	"math/rand"

	"github.com/kikugo/steamdefense/config"
	"github.com/kikugo/steamdefense/effect"
	"github.com/kikugo/steamdefense/enemy"
	"github.com/kikugo/steamdefense/entitystore"
	"github.com/kikugo/steamdefense/eventbus"
	"github.com/kikugo/steamdefense/grid"
	"github.com/kikugo/steamdefense/input"
	"github.com/kikugo/steamdefense/internal/gamelog"
	"github.com/kikugo/steamdefense/mapgen"
	"github.com/kikugo/steamdefense/pathfind"
	"github.com/kikugo/steamdefense/projectile"
	"github.com/kikugo/steamdefense/tower"
)

// maxDT bounds a tick's real elapsed time before the speed multiplier
// is applied, so a wall-clock hitch cannot fast-forward the physics step.
const maxDT = 1.0 / 30.0

// maxSpeedMultiplier bounds the player-facing fast-forward control.
const maxSpeedMultiplier = 5.0

// kindMotion maps each projectile-firing tower kind to its motion
// model. SteamCannon/AntiAir fly straight or homed in
// on their target; BronzeMortar lobs; SniperMecha's round closes the
// distance instantly (it never misses once fired).
var kindMotion = map[tower.Kind]projectile.MotionKind{
	tower.SteamCannon:  projectile.Linear,
	tower.AntiAir:      projectile.Homing,
	tower.BronzeMortar: projectile.Ballistic,
	tower.SniperMecha:  projectile.Instant,
}

var mortarKinds = map[tower.Kind]bool{tower.BronzeMortar: true}

// SimulationLoop owns every subsystem and advances them in a fixed
// order each tick: enemies, towers, projectiles, effect resolution,
// event-bus drain, snapshot.
type SimulationLoop struct {
	Grid   *grid.Grid
	Finder *pathfind.Finder
	Path   []grid.Pos

	store      *entitystore.Store
	bus        *eventbus.Bus
	enemies    *enemy.System
	towers     *tower.System
	projectiles *projectile.System
	effects    *effect.Resolver
	tracker    *effectTracker

	Economy   *Economy
	Scheduler *Scheduler
	State     *input.StateMachine
	Log       *gamelog.Logger

	rng *rand.Rand

	cfg config.Config

	gameTime  float64
	waveIndex int
	prepTimer float64
	waveStarted bool

	speedMultiplier float64
	paused          bool
}

// New builds a fully-wired SimulationLoop from a validated Config.
// Map generation failure surfaces as the simerr.MapGenError
// mapgen.Generate already produces; callers decide whether that is
// fatal.
func New(cfg config.Config) (*SimulationLoop, error) {
	log := gamelog.New(500, gamelog.LevelInfo)
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Map generation is recoverable: warn, re-seed, and retry before
	// giving up. Re-seeding is deterministic (seed+attempt), so the
	// same config still reproduces the same map.
	var result *mapgen.Result
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		result, err = mapgen.Generate(mapgen.Params{
			Width: cfg.Grid.Width, Height: cfg.Grid.Height, TileSize: cfg.Grid.TileSize,
			Seed: cfg.Seed + int64(attempt), Theme: cfg.Theme,
			PathComplexity: 0.3, PathWidth: cfg.Grid.PathWidth,
			BranchCount: 2, BranchLength: 6,
			MinPlacementAreas: cfg.Grid.MinPlacementZones, PlacementAreaSize: 6,
			DecorationDensity: 0.08,
		})
		if err == nil {
			break
		}
		log.Warnf("map generation failed (attempt %d): %v", attempt+1, err)
	}
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(0, 0)
	store := entitystore.New(bus)
	finder := pathfind.NewFinder(result.Grid, 64)

	sl := &SimulationLoop{
		Grid: result.Grid, Finder: finder, Path: result.Path,
		store: store, bus: bus,
		enemies:     enemy.New(result.Grid, result.Path, cfg.Enemies, store, bus, rng),
		towers:      tower.New(cfg.Towers, bus),
		projectiles: projectile.New(bus, kindMotion, mortarKinds),
		effects:     effect.New(store, bus),
		tracker:     newEffectTracker(bus),
		Economy:     NewEconomy(cfg.Balance.StartingMoney, cfg.Balance.StartingLives, cfg.Balance.Economy.KillBonusMult, cfg.Balance.Economy.InterestRate, cfg.Balance.Economy.SellRatio),
		Scheduler:   NewScheduler(),
		State:       input.NewStateMachine(),
		Log:         log,
		rng:         rng,
		cfg:         cfg,
		speedMultiplier: 1.0,
	}
	sl.subscribeEconomy()
	return sl, nil
}

func (s *SimulationLoop) subscribeEconomy() {
	if s.bus == nil {
		return
	}
	s.bus.Subscribe(eventbus.SubscribeOptions{Kind: "EnemyDeath", Handler: func(ev eventbus.Event) error {
		payload, ok := ev.Payload.(map[string]interface{})
		if !ok {
			return nil
		}
		reward, _ := payload["reward"].(int)
		s.Economy.AwardKill(reward)
		return nil
	}})
	s.bus.Subscribe(eventbus.SubscribeOptions{Kind: "EnemyReachBase", Handler: func(ev eventbus.Event) error {
		payload, ok := ev.Payload.(map[string]interface{})
		if !ok {
			return nil
		}
		dmg, _ := payload["damage"].(int)
		s.Economy.TakeDamage(dmg)
		return nil
	}})
}

// Start transitions MainMenu->Gameplay and begins the first wave's
// prep countdown, or fires an immediate Victory if there are no waves
// configured at all.
func (s *SimulationLoop) Start() {
	if err := s.State.Transition(input.Gameplay); err != nil {
		s.Log.Warnf("%v", err)
		return
	}
	if len(s.cfg.Waves) == 0 {
		s.declareVictory()
		return
	}
	s.prepTimer = s.cfg.Balance.Wave.PrepTime
}

// SetPaused toggles simulated-time advancement; the scheduler pauses
// in lockstep.
func (s *SimulationLoop) SetPaused(p bool) {
	s.paused = p
	s.Scheduler.SetPaused(p)
}

// Paused reports the current pause state.
func (s *SimulationLoop) Paused() bool { return s.paused }

// SetSpeed clamps and applies the fast-forward multiplier.
func (s *SimulationLoop) SetSpeed(mult float64) {
	if mult < 0 {
		mult = 0
	}
	if mult > maxSpeedMultiplier {
		mult = maxSpeedMultiplier
	}
	s.speedMultiplier = mult
}

// Speed returns the current speed multiplier.
func (s *SimulationLoop) Speed() float64 { return s.speedMultiplier }

// Tick advances the simulation by realDT seconds of wall-clock time,
// running every subsystem once in the fixed order.
func (s *SimulationLoop) Tick(realDT float64) {
	dt := realDT
	if dt > maxDT {
		dt = maxDT
	}
	if s.paused || s.State.Current != input.Gameplay {
		dt = 0
	}
	dt *= s.speedMultiplier
	s.gameTime += dt

	s.Scheduler.Update(s.gameTime)
	s.updateWaves(dt)

	s.enemies.Update(dt)

	targets := s.buildTargets()
	s.towers.Update(dt, targets)

	s.projectiles.Update(dt, s.liveTargetLookup)

	// Drain this tick's impact/intent events so effect resolution
	// lands, then resolve the deaths that damage produced: a kill
	// happens in the same tick as its cause. The second drain catches
	// anything the death cascade deferred.
	s.bus.ProcessEvents()
	s.enemies.ResolveDeaths()
	s.bus.ProcessEvents()

	s.store.ApplyPending()
	s.tracker.update(dt)

	s.checkLossCondition()
}

func (s *SimulationLoop) buildTargets() []tower.TargetInfo {
	live := s.enemies.Enemies()
	out := make([]tower.TargetInfo, 0, len(live))
	for _, e := range live {
		out = append(out, tower.TargetInfo{
			ID: e.ID, Pos: e.Pos, IsFlying: e.Stats.IsFlying,
			CurrentHP: e.CurrentHP, DistanceTraveled: e.DistanceTraveled(),
		})
	}
	return out
}

func (s *SimulationLoop) liveTargetLookup(id entitystore.ID) (grid.WorldPos, bool) {
	ent, ok := s.store.Get(id)
	if !ok || !ent.Alive() {
		return grid.WorldPos{}, false
	}
	return ent.Position(), true
}

// updateWaves drives the prep-timer -> spawn -> clear -> interest
// cycle.
func (s *SimulationLoop) updateWaves(dt float64) {
	if s.waveIndex >= len(s.cfg.Waves) {
		return
	}
	if !s.waveStarted {
		s.prepTimer -= dt
		if s.prepTimer > 0 {
			return
		}
		s.startWave(s.cfg.Waves[s.waveIndex])
		s.waveStarted = true
		return
	}
	if s.enemies.WaveActive() {
		return
	}
	s.Economy.SettleWave()
	s.waveIndex++
	s.waveStarted = false
	if s.waveIndex >= len(s.cfg.Waves) {
		if s.Economy.Lives > 0 {
			s.declareVictory()
		}
		return
	}
	s.prepTimer = s.cfg.Balance.Wave.PrepTime
}

func (s *SimulationLoop) startWave(w config.WaveDef) {
	levelMult := w.LevelMultiplier
	if levelMult <= 0 {
		levelMult = math.Pow(s.cfg.Balance.Wave.DifficultyScaling, float64(s.waveIndex))
	}
	entries := clampWaveEntries(w.Enemies, s.cfg.Balance.Wave.MaxPerWave, s.Log)
	s.enemies.StartWave(enemy.Wave{Enemies: entries, LevelMultiplier: levelMult}, s.cfg.Balance.Wave.SpawnInterval)
}

func clampWaveEntries(entries []enemy.WaveEntry, maxPerWave int, log *gamelog.Logger) []enemy.WaveEntry {
	if maxPerWave <= 0 {
		return entries
	}
	total := 0
	out := make([]enemy.WaveEntry, 0, len(entries))
	for _, e := range entries {
		remaining := maxPerWave - total
		if remaining <= 0 {
			log.Warnf("wave entry %s dropped: max_per_wave=%d exceeded", e.Kind, maxPerWave)
			continue
		}
		count := e.Count
		if count > remaining {
			count = remaining
		}
		out = append(out, enemy.WaveEntry{Kind: e.Kind, Count: count})
		total += count
	}
	return out
}

func (s *SimulationLoop) checkLossCondition() {
	if s.Economy.Lives <= 0 && s.State.Current == input.Gameplay {
		if err := s.State.Transition(input.GameOver); err != nil {
			s.Log.Warnf("%v", err)
		}
	}
}

func (s *SimulationLoop) declareVictory() {
	if err := s.State.Transition(input.Victory); err != nil {
		s.Log.Warnf("%v", err)
	}
}

// PlaceTower validates affordability and tile buildability, spends the
// cost, and registers a new tower.
func (s *SimulationLoop) PlaceTower(kind tower.Kind, pos grid.WorldPos, mode tower.TargetingMode) (*tower.Tower, bool) {
	gp := s.Grid.WorldToGrid(pos)
	if s.Grid.GetTile(gp.X, gp.Y) != grid.Buildable {
		return nil, false
	}
	stats, ok := s.cfg.Towers[kind]
	if !ok || !s.Economy.Spend(stats.Cost) {
		return nil, false
	}
	id := s.store.NextID()
	return s.towers.Place(id, kind, pos, mode), true
}

// SellTower sells a placed tower and credits the refund immediately.
func (s *SimulationLoop) SellTower(id entitystore.ID) bool {
	refund, ok := s.towers.Sell(id)
	if !ok {
		return false
	}
	s.Economy.Credit(refund)
	return true
}

// UpgradeTower spends the next level's cost if affordable.
func (s *SimulationLoop) UpgradeTower(id entitystore.ID) bool {
	t, ok := s.towers.Get(id)
	if !ok {
		return false
	}
	cost, ok := t.UpgradeCost()
	if !ok || !s.Economy.Spend(cost) {
		return false
	}
	t.Upgrade()
	return true
}

// Towers returns every currently-placed tower.
func (s *SimulationLoop) Towers() []*tower.Tower { return s.towers.Towers() }

// Enemies returns every currently-live enemy.
func (s *SimulationLoop) Enemies() []*enemy.Enemy { return s.enemies.Enemies() }

// WaveIndex returns the 1-based index of the wave in progress or about
// to start, clamped to the wave count so a finished campaign reports
// its last wave rather than one past the end.
func (s *SimulationLoop) WaveIndex() int {
	if len(s.cfg.Waves) == 0 {
		return 0
	}
	if s.waveIndex >= len(s.cfg.Waves) {
		return len(s.cfg.Waves)
	}
	return s.waveIndex + 1
}
