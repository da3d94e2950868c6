package main

import (
	"fmt"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	csvparser "normalizer/internal/parser/csv"
	"normalizer/internal/relation"
)

// newMkdataCmd generates a deliberately denormalized orders file: customer
// and product attributes are repeated on every order row, so analyze finds
// customer_id -> name/city/zip and product_code -> name/price dependencies.
func newMkdataCmd() *cobra.Command {
	var (
		rows   int
		seed   int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "mkdata",
		Short: "Generate a denormalized demo CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds := demoOrders(rows, seed)
			if err := csvparser.WriteFile(output, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", ds.NumRows(), output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 200, "Number of order rows")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "orders.csv", "Output CSV file")
	return cmd
}

type demoCustomer struct {
	id   string
	name string
	city string
	zip  string
}

type demoProduct struct {
	code  string
	name  string
	price float64
}

func demoOrders(rows int, seed int64) *relation.Dataset {
	f := faker.NewWithSeed(rand.NewSource(seed))

	nCustomers := rows / 10
	if nCustomers < 2 {
		nCustomers = 2
	}
	customers := make([]demoCustomer, nCustomers)
	for i := range customers {
		customers[i] = demoCustomer{
			id:   fmt.Sprintf("C%04d", i+1),
			name: f.Person().Name(),
			city: f.Address().City(),
			zip:  f.Address().PostCode(),
		}
	}

	products := make([]demoProduct, 8)
	for i := range products {
		products[i] = demoProduct{
			code:  fmt.Sprintf("P%03d", i+1),
			name:  f.Company().Name(),
			price: float64(f.IntBetween(100, 9999)) / 100,
		}
	}

	ds := &relation.Dataset{
		Columns: []relation.Column{
			{Name: "order_id", Type: relation.TypeInteger},
			{Name: "customer_id", Type: relation.TypeText},
			{Name: "customer_name", Type: relation.TypeText},
			{Name: "customer_city", Type: relation.TypeText},
			{Name: "customer_zip", Type: relation.TypeText},
			{Name: "product_code", Type: relation.TypeText},
			{Name: "product_name", Type: relation.TypeText},
			{Name: "unit_price", Type: relation.TypeFloat},
			{Name: "quantity", Type: relation.TypeInteger},
		},
	}
	ds.Rows = make([][]any, 0, rows)
	for i := 0; i < rows; i++ {
		c := customers[f.IntBetween(0, len(customers)-1)]
		p := products[f.IntBetween(0, len(products)-1)]
		ds.Rows = append(ds.Rows, []any{
			int64(i + 1),
			c.id, c.name, c.city, c.zip,
			p.code, p.name, p.price,
			int64(f.IntBetween(1, 20)),
		})
	}
	return ds
}
