// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Command seeder loads a starter knowledge base for a small
// electrical shop, so a fresh database answers common customer
// queries out of the box.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/poiesic/jawab"
	"github.com/urfave/cli/v2"
)

type seedEntry struct {
	question string
	answer   string
}

// Starter entries mix Hinglish and Devanagari the way customers
// actually type them.
var starterKnowledge = map[string][]seedEntry{
	"electrical": {
		{"switch ki price", "Switch ka price 50-200 rupees tak hai, brand aur type ke according."},
		{"wire ka rate", "Wire ka rate 45-80 rupees per meter hai, copper wire ke liye."},
		{"cable ka rate", "Cable ka rate 60-120 rupees per meter hai, size aur quality ke according."},
		{"bulb ki price", "LED bulb ka price 50-300 rupees hai, watt ke according."},
		{"fan ki price kya hai", "Ceiling fan 1200-3500 rupees tak hai, brand ke hisab se."},
		{"mcb ka rate", "MCB ka rate 120-450 rupees hai, ampere rating ke according."},
		{"स्विच की कीमत क्या है", "Switch ka price 50-200 rupees tak hai, brand aur type ke according."},
		{"installation charge kitna hai", "Installation charge 100-500 rupees hai, kaam ke hisab se. Ghar aa ke estimate free hai."},
		{"warranty kitni hai", "Branded items pe 1-2 saal ki company warranty hai. Bill sambhal ke rakhiye."},
		{"safety tips", "Electrical safety ke liye: wet hands se touch na karein, proper earthing karwayiye, overloading se bachiye."},
		{"maintenance tips", "Regular cleaning kariye, loose connections check kariye, voltage fluctuation se bachne ke liye stabilizer use kariye."},
	},
	"general": {
		{"shop address", "Hamara shop Main Market mein hai. Google Maps pe 'Electrical Shop' search kariye."},
		{"contact number", "Contact ke liye 9876543210 pe call kariye ya WhatsApp kariye."},
		{"opening time", "Subah 9 baje se raat 8 baje tak open hai. Sunday 10-6 baje."},
		{"complaint hai", "Complaint ke liye sorry! Batayiye kya problem hai, hum turant solve kar denge."},
		{"refund chahiye", "Refund ke liye original bill aur item laiye. 7 din ke andar full refund milega."},
		{"exchange karna hai", "Exchange available hai same price range mein. Size ya color change kar sakte hain."},
		{"discount offer", "Festival season mein special discount hai. 15% tak discount electrical items pe."},
		{"emergency contact", "Electrical emergency ke liye 24/7 available hain. Emergency number: 9876543210."},
	},
}

func main() {
	app := &cli.App{
		Name:  "seeder",
		Usage: "Load the starter knowledge base into a jawab database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
		},
		Action: seedCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := jawab.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	total := 0
	for domain, entries := range starterKnowledge {
		for _, entry := range entries {
			if _, err := db.Teach(ctx, entry.question, entry.answer, domain); err != nil {
				return fmt.Errorf("failed to seed %q: %w", entry.question, err)
			}
			total++
		}
		fmt.Printf("seeded %d entries into domain %q\n", len(entries), domain)
	}

	fmt.Printf("done: %d entries total\n", total)
	return nil
}
