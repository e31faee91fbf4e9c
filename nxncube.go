// Package nxncube is a rotating-cube puzzle engine for any N×N×N lattice.
//
// # Features
//
//   - Shell-only lattice of cubies with stable ids and exact integer grid positions
//   - Slice rotations animated in small increments and committed as quarter turns
//   - Drag gestures mapped to world axes through the camera basis
//   - Seeded scrambles that can be replayed for a retry
//   - Undo history of committed moves
//   - Solved detection by common cubie orientation
//
// # Quick Start
//
// Create a session, scramble it and drive it from the host's frame loop:
//
//	s, err := nxncube.NewSession(nxncube.WithDimension(4), nxncube.WithSeed(7))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.OnMove(func(m nxncube.Move) {
//	    fmt.Println("Move:", m.Notation())
//	})
//	s.OnSolved(func() {
//	    fmt.Println("Solved!")
//	})
//
//	if err := s.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    s.Tick(frameTime, readInput())
//	}
//
// Everything runs on the goroutine that calls Tick. Callbacks fire from
// inside Tick.
//
// # Headless Simulation
//
// The Cube type applies moves instantly, without animation:
//
//	cube, _ := nxncube.NewCube(3)
//	cube.Apply(nxncube.Turn(4, nxncube.RotX), nxncube.Turn(10, nxncube.RotYPrime))
//	cube.ApplyNotation("#10 Y+90, #4 X-90")
//	fmt.Println("Solved:", cube.IsSolved())
//
// # Move Notation
//
// A move names a reference cubie and a rotation about one world axis in
// degrees: "#4 X+90" turns the X slice containing cubie 4 by +90 degrees.
package nxncube
