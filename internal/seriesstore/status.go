package seriesstore

import (
	"fmt"
	"strings"

	"github.com/jiayuqiu/sisi-mcp/schema"
)

// PrintStatus prints series store status information.
func PrintStatus(status schema.StoreStatus) {
	fmt.Printf("Series Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Rows: %d\n", status.TotalRows)
	if status.TotalRows > 0 {
		fmt.Printf("Channels: %s\n", strings.Join(status.Channels, ", "))
		fmt.Printf("First Date: %s\n", schema.FormatDateID(status.FirstDate))
		fmt.Printf("Last Date: %s\n", schema.FormatDateID(status.LastDate))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}
