package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List supported aircraft classes, signatures, and feature schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, class := range aircraft.Concrete() {
				fmt.Println(class)

				if sig, ok := aircraft.SignatureFor(class); ok {
					fmt.Printf("  motors: %d  control surfaces: %t  vertical takeoff: %t\n",
						sig.MotorCount, sig.HasControlSurfaces, sig.VerticalTakeoff)
					fmt.Printf("  cruise speed: %.0f-%.0f m/s  pattern: %s\n",
						sig.CruiseSpeedRange[0], sig.CruiseSpeedRange[1], sig.TypicalFlightPattern)
				}

				schema := aircraft.FeatureSchema(class)
				fmt.Printf("  features (%d): %s\n\n", len(schema), strings.Join(schema, ", "))
			}
			fmt.Println("unknown logs fall back to the multirotor model")
			return nil
		},
	}
}
