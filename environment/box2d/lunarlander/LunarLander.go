// Package lunarlander provides an implementation of the Lunar Lander
// environment on top of the Box2D physics engine.
package lunarlander

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"
	"github.com/samuelfneumann/skillchain/environment"
	"github.com/samuelfneumann/skillchain/timestep"
	"github.com/samuelfneumann/skillchain/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	FPS float64 = 50

	// speed of game, adjusts forces as well
	Scale float64 = 30.0

	XGravity float64 = 0.0
	YGravity float64 = -10.0

	MainEnginePower float64 = 13.0
	SideEnginePower float64 = 0.6

	LegAway         float64 = 20.0
	LegDown         float64 = 18.0
	LegW            float64 = 2.0
	LegH            float64 = 8.0
	LegSpringTorque float64 = 40.0

	SideEngineHeight float64 = 14.0
	SideEngineAway   float64 = 12.0

	Chunks int = 11

	ViewportW float64 = 600
	ViewportH float64 = 400

	// Action
	MaxContinuousAction float64 = 1.0
	MinContinuousAction float64 = -MaxContinuousAction
	MinDiscreteAction   int     = 0
	MaxDiscreteAction   int     = 3

	// State observations
	StateObservations int     = 8
	MinAngle          float64 = -math.Pi
	MaxAngle          float64 = math.Pi

	// Box2D limits on velocity: 2.0 units per timestep
	MaxVelocity float64 = 2.0 / (1.0 / FPS)
	MinVelocity float64 = -MaxVelocity

	// Default starting values
	InitialX      float64 = (ViewportW / Scale / 2)
	InitialY      float64 = ((ViewportH - ViewportH/25) / Scale)
	InitialRandom float64 = 1000.0 // Set 1500 to make game harder

	// StartDims is the length of vectors returned by the Starter of a
	// lunar lander Task: x position, y position, initial random force
	StartDims int = 3
)

var LanderPoly = [][]float64{
	{-14, 17},
	{-17, 0},
	{-17, -10},
	{17, -10},
	{17, 0},
	{14, 17},
}

// WorldToPixelCoord converts Box2D world coordinates to pixel
// coordinates of a rendered frame
func WorldToPixelCoord(coords [2]float64) [2]float64 {
	x, y := coords[0], coords[1]

	pixelX := Scale * x
	pixelY := ViewportH - Scale*y

	return [2]float64{pixelX, pixelY}
}

type contactDetector struct {
	env *lunarLander
}

func newContactDetector(e *lunarLander) *contactDetector {
	return &contactDetector{e}
}

func (c *contactDetector) touches(body *box2d.B2Body,
	contact box2d.B2ContactInterface) bool {
	return body == contact.GetFixtureA().GetBody() ||
		body == contact.GetFixtureB().GetBody()
}

func (c *contactDetector) BeginContact(contact box2d.B2ContactInterface) {
	// If the body touches the ground, it's game over.
	// The ship should be landed gently.
	if c.touches(c.env.lander, contact) {
		c.env.gameOver = true
	}

	if c.touches(c.env.legs[0], contact) {
		c.env.leg1GroundContact = true
	}
	if c.touches(c.env.legs[1], contact) {
		c.env.leg2GroundContact = true
	}
}

func (c *contactDetector) EndContact(contact box2d.B2ContactInterface) {
	if c.touches(c.env.legs[0], contact) {
		c.env.leg1GroundContact = false
	}
	if c.touches(c.env.legs[1], contact) {
		c.env.leg2GroundContact = false
	}
}

func (c *contactDetector) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
}

func (c *contactDetector) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}

// lunarLander implements the physics shared by the lunar lander
// environments. Actions taken by lunarLander are 2-dimensional and
// continuous: main engine power and side engine power, each in [-1, 1].
type lunarLander struct {
	task Task

	world box2d.B2World

	boundary       []*box2d.B2Body
	boundaryColour color.Color
	xBounds        r1.Interval
	yBounds        r1.Interval

	moon         *box2d.B2Body
	moonVertices [][2]float64
	moonShade    color.Color

	skyShade color.Color

	lander       *box2d.B2Body
	landerColour color.Color

	legs              []*box2d.B2Body
	leg1GroundContact bool
	leg2GroundContact bool
	legColour         color.Color

	helipadX1 float64
	helipadX2 float64
	helipadY  float64

	gameOver bool
	seed     uint64
	rng      distuv.Uniform

	actionBounds   r1.Interval
	angleBounds    r1.Interval
	velocityBounds r1.Interval

	discount float64
	prevStep timestep.TimeStep
	mPower   float64
	sPower   float64

	frameDir string
	frame    int
}

func newLunarLander(task Task, discount float64,
	seed uint64) (*lunarLander, timestep.TimeStep, error) {
	l := &lunarLander{}
	l.world = box2d.MakeB2World(box2d.B2Vec2{X: XGravity, Y: YGravity})
	l.boundaryColour = color.RGBA{R: 255, G: 166, B: 0, A: 255}

	l.moonVertices = make([][2]float64, 0, 2*(Chunks-1))
	l.moonShade = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	l.skyShade = color.RGBA{R: 30, G: 30, B: 30, A: 255}

	l.landerColour = color.RGBA{R: 128, G: 102, B: 230, A: 255}
	l.legColour = color.RGBA{R: 77, G: 77, B: 128, A: 255}

	l.seed = seed
	l.rng = distuv.Uniform{Min: 0, Max: 1.0, Src: rand.NewSource(seed)}
	l.discount = discount

	l.actionBounds = r1.Interval{
		Min: MinContinuousAction,
		Max: MaxContinuousAction,
	}
	l.angleBounds = r1.Interval{Min: MinAngle, Max: MaxAngle}
	l.velocityBounds = r1.Interval{Min: MinVelocity, Max: MaxVelocity}
	l.xBounds = r1.Interval{
		Min: 0.05 * ViewportW / Scale,
		Max: 0.95 * ViewportW / Scale,
	}
	l.yBounds = r1.Interval{Min: ViewportH / Scale / 2, Max: InitialY}
	l.frameDir = "."

	l.task = task
	task.registerEnv(l)

	step, err := l.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, err
	}
	return l, step, nil
}

// SPower returns the side engine power used on the last step
func (l *lunarLander) SPower() float64 {
	return l.sPower
}

// MPower returns the main engine power used on the last step
func (l *lunarLander) MPower() float64 {
	return l.mPower
}

// IsAwake returns whether the lander body is still simulated. A lander
// that has come to rest falls asleep.
func (l *lunarLander) IsAwake() bool {
	return l.lander.IsAwake()
}

// GroundContact returns whether each leg touches the ground
func (l *lunarLander) GroundContact() (bool, bool) {
	return l.leg1GroundContact, l.leg2GroundContact
}

// IsGameOver returns whether the lander body has touched the ground
func (l *lunarLander) IsGameOver() bool {
	return l.gameOver
}

// SetFrameDir sets the directory that Render writes frames to
func (l *lunarLander) SetFrameDir(dir string) {
	l.frameDir = dir
}

func (l *lunarLander) destroy() {
	if l.moon == nil {
		return
	}
	l.world.SetContactListener(nil)
	l.world.DestroyBody(l.moon)
	l.moon = nil

	l.world.DestroyBody(l.lander)
	l.lander = nil

	for _, leg := range l.legs {
		l.world.DestroyBody(leg)
	}
	for _, bound := range l.boundary {
		l.world.DestroyBody(bound)
	}
}

// Reset resets the environment to a new starting state sampled from
// the Task's Starter and returns the first TimeStep of the episode
func (l *lunarLander) Reset() (timestep.TimeStep, error) {
	l.destroy()
	l.world.SetContactListener(newContactDetector(l))
	l.gameOver = false
	l.prevStep = timestep.TimeStep{}
	l.mPower = 0.0
	l.sPower = 0.0
	l.task.reset()

	start := l.task.Start()
	if err := validateStart(start, l.xBounds, l.yBounds); err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	W := ViewportW / Scale
	H := ViewportH / Scale

	// Bounds
	corners := [][2]box2d.B2Vec2{
		{box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(0.0, H)},
		{box2d.MakeB2Vec2(0.0, H), box2d.MakeB2Vec2(W, H)},
		{box2d.MakeB2Vec2(W, H), box2d.MakeB2Vec2(W, 0.0)},
		{box2d.MakeB2Vec2(W, 0.0), box2d.MakeB2Vec2(0.0, 0.0)},
	}
	l.boundary = make([]*box2d.B2Body, len(corners))
	for i, corner := range corners {
		boundsDef := box2d.NewB2BodyDef()
		boundsDef.Type = box2d.B2BodyType.B2_staticBody
		l.boundary[i] = l.world.CreateBody(boundsDef)

		boundsShape := box2d.NewB2EdgeShape()
		boundsShape.Set(corner[0], corner[1])

		boundsFix := box2d.MakeB2FixtureDef()
		boundsFix.Shape = boundsShape
		l.boundary[i].CreateFixtureFromDef(&boundsFix)
	}

	// Terrain
	height := make([]float64, Chunks+1)
	for i := range height {
		height[i] = l.rng.Rand() * (H / 2.0)
	}

	chunkX := make([]float64, Chunks)
	for i := range chunkX {
		chunkX[i] = float64(i) * (W / float64(Chunks-1))
	}

	l.helipadX1 = chunkX[Chunks/2-1]
	l.helipadX2 = chunkX[Chunks/2+1]
	l.helipadY = H / 4

	for i := Chunks/2 - 2; i <= Chunks/2+2; i++ {
		height[i] = l.helipadY
	}

	smoothY := make([]float64, Chunks)
	for i := range smoothY {
		if i == 0 {
			smoothY[i] = 0.33 * (height[Chunks-1] + height[i] + height[i+1])
		} else {
			smoothY[i] = 0.33 * (height[i-1] + height[i] + height[i+1])
		}
	}

	moonDef := box2d.NewB2BodyDef()
	moonDef.Type = box2d.B2BodyType.B2_staticBody
	moonDef.Position.Set(0, 0)
	l.moon = l.world.CreateBody(moonDef)

	moonShape := box2d.NewB2EdgeShape()
	moonShape.Set(box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(W, 0.0))
	moonFixture := box2d.MakeB2FixtureDef()
	moonFixture.Shape = moonShape
	l.moon.CreateFixtureFromDef(&moonFixture)

	l.moonVertices = make([][2]float64, 0, 2*(Chunks-1))
	for i := 0; i < Chunks-1; i++ {
		p1 := [2]float64{chunkX[i], smoothY[i]}
		p2 := [2]float64{chunkX[i+1], smoothY[i+1]}
		l.moonVertices = append(l.moonVertices, p1, p2)

		edge := box2d.NewB2EdgeShape()
		edge.Set(box2d.MakeB2Vec2(p1[0], p1[1]), box2d.MakeB2Vec2(p2[0], p2[1]))

		edgeFixture := box2d.MakeB2FixtureDef()
		edgeFixture.Shape = edge
		edgeFixture.Density = 0.0
		edgeFixture.Friction = 0.1
		l.moon.CreateFixtureFromDef(&edgeFixture)
	}

	// Lander
	initialX := start.AtVec(0)
	initialY := start.AtVec(1)
	landerDef := box2d.MakeB2BodyDef()
	landerDef.Type = box2d.B2BodyType.B2_dynamicBody
	landerDef.Position = box2d.MakeB2Vec2(initialX, initialY)
	landerDef.Angle = 0.0
	l.lander = l.world.CreateBody(&landerDef)

	landerShape := box2d.NewB2PolygonShape()
	vertices := make([]box2d.B2Vec2, len(LanderPoly))
	for i := range LanderPoly {
		vertices[i] = box2d.MakeB2Vec2(
			LanderPoly[i][0]/Scale,
			LanderPoly[i][1]/Scale,
		)
	}
	landerShape.Set(vertices, len(vertices))

	landerFix := box2d.MakeB2FixtureDef()
	landerFix.Shape = landerShape
	landerFix.Density = 5.0
	landerFix.Friction = 0.1
	landerFix.Restitution = 0.0
	filter := box2d.MakeB2Filter()
	filter.CategoryBits = 0x0010
	filter.MaskBits = 0x001
	landerFix.Filter = filter
	l.lander.CreateFixtureFromDef(&landerFix)

	initialRandom := start.AtVec(2)
	initialForce := box2d.MakeB2Vec2(
		(l.rng.Rand()*2*initialRandom)-initialRandom,
		(l.rng.Rand()*2*initialRandom)-initialRandom,
	)
	l.lander.ApplyForceToCenter(initialForce, true)

	// Legs
	l.legs = make([]*box2d.B2Body, 0, 2)
	for _, i := range []float64{-1.0, 1.0} {
		legDef := box2d.NewB2BodyDef()
		legDef.Type = box2d.B2BodyType.B2_dynamicBody
		legDef.Position = box2d.MakeB2Vec2(initialX-i*LegAway/Scale,
			initialY)
		legDef.Angle = i * 0.05

		leg := l.world.CreateBody(legDef)
		l.legs = append(l.legs, leg)

		legShape := box2d.NewB2PolygonShape()
		legShape.SetAsBox(LegW/Scale, LegH/Scale)

		legFix := box2d.MakeB2FixtureDef()
		legFix.Density = 1.0
		legFix.Restitution = 0.0
		legFix.Shape = legShape
		filter := box2d.MakeB2Filter()
		filter.CategoryBits = 0x0020
		filter.MaskBits = 0x001
		legFix.Filter = filter
		leg.CreateFixtureFromDef(&legFix)

		rjd := box2d.MakeB2RevoluteJointDef()
		rjd.BodyA = l.lander
		rjd.BodyB = leg
		rjd.LocalAnchorA = box2d.MakeB2Vec2(0., 0.)
		rjd.LocalAnchorB = box2d.MakeB2Vec2(i*LegAway/Scale, LegDown/Scale)
		rjd.EnableMotor = true
		rjd.EnableLimit = true
		rjd.MaxMotorTorque = LegSpringTorque
		rjd.MotorSpeed = 0.3 * i

		if i < 0 {
			rjd.LowerAngle = 0.9 - 0.5
			rjd.UpperAngle = 0.9
		} else {
			rjd.LowerAngle = -0.9
			rjd.UpperAngle = -0.9 + 0.5
		}
		l.world.CreateJoint(&rjd)
	}
	l.leg1GroundContact = false
	l.leg2GroundContact = false

	step, last := l.step(mat.NewVecDense(2, []float64{0.0, 0.0}))
	if last {
		return timestep.TimeStep{}, fmt.Errorf("reset: environment " +
			"ended as soon as it began")
	}

	first := timestep.New(timestep.First, 0.0, l.discount, step.Observation, 0)
	l.prevStep = first
	return first, nil
}

// step takes one physics step with a continuous action
func (l *lunarLander) step(action *mat.VecDense) (timestep.TimeStep, bool) {
	a := mat.VecDenseCopyOf(action)
	for i := 0; i < a.Len(); i++ {
		a.SetVec(i, floatutils.ClipInterval(a.AtVec(i), l.actionBounds))
	}

	// Engines
	tip := [2]float64{
		math.Sin(l.lander.GetAngle()),
		math.Cos(l.lander.GetAngle()),
	}
	side := [2]float64{-tip[1], tip[0]}
	var dispersion [2]float64
	for i := range dispersion {
		dispersion[i] = (2*l.rng.Rand() - 1.0) / Scale
	}

	mPower := 0.0
	if a.AtVec(0) > 0.0 {
		mPower = (floatutils.Clip(a.AtVec(0), 0.0, 1.0) + 1.0) * 0.5
		if mPower < 0.5 || mPower > 1.0 {
			panic("step: illegal power for main engines")
		}

		ox := tip[0]*(4.0/Scale+2.0*dispersion[0]) + side[0]*dispersion[1]
		oy := -tip[1]*(4.0/Scale+2.0*dispersion[0]) - side[1]*dispersion[1]

		impulsePos := box2d.MakeB2Vec2(
			l.lander.GetPosition().X+ox,
			l.lander.GetPosition().Y+oy,
		)
		linearImpulse := box2d.MakeB2Vec2(
			-ox*MainEnginePower*mPower,
			-oy*MainEnginePower*mPower,
		)
		l.lander.ApplyLinearImpulse(linearImpulse, impulsePos, true)
	}
	l.mPower = mPower

	sPower := 0.0
	if math.Abs(a.AtVec(1)) > 0.5 {
		direction := floatutils.Sign(a.AtVec(1))
		sPower = floatutils.Clip(math.Abs(a.AtVec(1)), 0.5, 1.0)
		if sPower < 0.5 || sPower > 1.0 {
			panic("step: illegal value for orientation engines")
		}

		ox := tip[0]*dispersion[0] + side[0]*(3.0*dispersion[1]+direction*
			SideEngineAway/Scale)
		oy := -tip[1]*dispersion[0] - side[1]*(3.0*dispersion[1]+direction*
			SideEngineAway/Scale)

		impulsePos := box2d.MakeB2Vec2(
			l.lander.GetPosition().X+ox-tip[0]*17.0/Scale,
			l.lander.GetPosition().Y+oy+tip[1]*SideEngineHeight/Scale,
		)
		linearImpulse := box2d.MakeB2Vec2(
			-ox*SideEnginePower*sPower,
			-oy*SideEnginePower*sPower,
		)
		l.lander.ApplyLinearImpulse(linearImpulse, impulsePos, true)
	}
	l.sPower = sPower

	l.world.Step(1.0/FPS, 6*int(Scale), 2*int(Scale))

	pos := l.lander.GetPosition()
	vel := l.lander.GetLinearVelocity()

	var leg1GroundContact, leg2GroundContact float64
	if l.leg1GroundContact {
		leg1GroundContact = 1.0
	}
	if l.leg2GroundContact {
		leg2GroundContact = 1.0
	}

	state := mat.NewVecDense(StateObservations, []float64{
		(pos.X - ViewportW/Scale/2.0) / (ViewportW / Scale / 2.0),
		(pos.Y - (l.helipadY + LegDown/Scale)) / (ViewportH/Scale - l.helipadY),
		vel.X * (ViewportW / Scale / 2.0) / FPS,
		vel.Y * (ViewportH / Scale / 2.0) / FPS,
		floatutils.Wrap(l.lander.GetAngle(), l.angleBounds.Min,
			l.angleBounds.Max),
		20.0 * l.lander.GetAngularVelocity() / FPS,
		leg1GroundContact,
		leg2GroundContact,
	})

	reward := l.task.GetReward(l.prevStep.Observation, a, state)
	t := timestep.New(timestep.Mid, reward, l.discount, state,
		l.prevStep.Number+1)
	l.task.End(&t)

	l.prevStep = t
	return t, t.Last()
}

// Render draws the current state of the environment and saves it as
// a numbered PNG frame in the frame directory
func (l *lunarLander) Render() error {
	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetColor(l.moonShade)
	dc.Clear()

	// Sky above the terrain
	startCoords := WorldToPixelCoord([2]float64{l.moonVertices[0][0],
		ViewportH / Scale})
	dc.MoveTo(startCoords[0], startCoords[1])
	for _, vertex := range l.moonVertices {
		coords := WorldToPixelCoord(vertex)
		dc.LineTo(coords[0], coords[1])
	}
	last := len(l.moonVertices) - 1
	endCoords := WorldToPixelCoord([2]float64{l.moonVertices[last][0],
		ViewportH / Scale})
	dc.LineTo(endCoords[0], endCoords[1])
	dc.ClosePath()
	dc.SetColor(l.skyShade)
	dc.Fill()

	// Helipad flags
	for _, x := range []float64{l.helipadX1, l.helipadX2} {
		bottom := WorldToPixelCoord([2]float64{x, l.helipadY})
		top := WorldToPixelCoord([2]float64{x, l.helipadY + 50/Scale})
		dc.DrawLine(bottom[0], bottom[1], top[0], top[1])
	}
	dc.SetColor(l.moonShade)
	dc.SetLineWidth(2.0)
	dc.Stroke()

	// Bounds
	dc.SetColor(l.boundaryColour)
	dc.SetLineWidth(5.0)
	for _, bound := range l.boundary {
		sh := bound.GetFixtureList().M_shape.(*box2d.B2EdgeShape)
		p1 := WorldToPixelCoord([2]float64{sh.M_vertex1.X, sh.M_vertex1.Y})
		p2 := WorldToPixelCoord([2]float64{sh.M_vertex2.X, sh.M_vertex2.Y})
		dc.DrawLine(p1[0], p1[1], p2[0], p2[1])
	}
	dc.Stroke()

	l.fillBody(dc, l.lander, l.landerColour)
	for _, leg := range l.legs {
		l.fillBody(dc, leg, l.legColour)
	}

	if err := os.MkdirAll(l.frameDir, 0o755); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	path := filepath.Join(l.frameDir, fmt.Sprintf("frame_%06d.png", l.frame))
	l.frame++
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// fillBody fills every polygon fixture of body
func (l *lunarLander) fillBody(dc *gg.Context, body *box2d.B2Body,
	c color.Color) {
	for fix := body.GetFixtureList(); fix != nil; fix = fix.M_next {
		shape, ok := fix.M_shape.(*box2d.B2PolygonShape)
		if !ok {
			continue
		}

		dc.ClearPath()
		for i := 0; i < shape.M_count; i++ {
			vertex := box2d.B2TransformVec2Mul(body.M_xf, shape.M_vertices[i])
			coords := WorldToPixelCoord([2]float64{vertex.X, vertex.Y})
			dc.LineTo(coords[0], coords[1])
		}
		dc.ClosePath()
		dc.SetColor(c)
		dc.Fill()
	}
}

// DiscountSpec returns the discount specification of the environment
func (l *lunarLander) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{l.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		lowerBound, environment.Continuous)
}

// ObservationSpec returns the observation specification of the
// environment
func (l *lunarLander) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(StateObservations, nil)

	lowerBound := mat.NewVecDense(StateObservations, []float64{
		-1.,
		0.,
		l.velocityBounds.Min,
		l.velocityBounds.Min,
		l.angleBounds.Min,
		l.velocityBounds.Min,
		0.,
		0.,
	})

	upperBound := mat.NewVecDense(StateObservations, []float64{
		1.,
		1.,
		l.velocityBounds.Max,
		l.velocityBounds.Max,
		l.angleBounds.Max,
		l.velocityBounds.Max,
		1.,
		1.,
	})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// CurrentTimeStep returns the last TimeStep taken in the environment
func (l *lunarLander) CurrentTimeStep() timestep.TimeStep {
	return l.prevStep
}

// Close releases the bodies of the simulated world
func (l *lunarLander) Close() error {
	l.destroy()
	return nil
}

func validateStart(state *mat.VecDense, xBounds, yBounds r1.Interval) error {
	if state.Len() != StartDims {
		return fmt.Errorf("starting values should be %v-dimensional, "+
			"got %v", StartDims, state.Len())
	}

	if state.AtVec(0) > xBounds.Max || state.AtVec(0) < xBounds.Min {
		return fmt.Errorf("x position out of bounds, expected x ϵ [%v, %v] "+
			"but got x = %v", xBounds.Min, xBounds.Max, state.AtVec(0))
	}

	if state.AtVec(1) > yBounds.Max || state.AtVec(1) < yBounds.Min {
		return fmt.Errorf("y position out of bounds, expected y ϵ [%v, %v] "+
			"but got y = %v", yBounds.Min, yBounds.Max, state.AtVec(1))
	}

	return nil
}
