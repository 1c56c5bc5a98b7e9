package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MasandeM/xbee"
	"github.com/MasandeM/xbee/apiframe"

	"go.bug.st/serial"
)

func main() {

	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	log.Println("Connecting to UART")
	uart, err := serial.Open("/dev/ttyUSB0", mode) // xbeemon reads this from its config
	if err != nil {
		log.Fatal(err)
	}
	if err := uart.SetReadTimeout(100 * time.Millisecond); err != nil {
		log.Fatal(err)
	}
	log.Println("Successfully Connected")

	device := xbee.New(uart)

	var frameID uint8
	for {
		frameID++
		if frameID == 0 {
			frameID = 1 // zero suppresses the status report
		}

		err = device.SendData(frameID, apiframe.ShortAddr(apiframe.BroadcastAddr), []byte("ping"))
		if err != nil {
			log.Fatal("error sending data: ", err)
		}

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			frame, err := device.ReadFrame()
			if errors.Is(err, xbee.ErrNoFrame) {
				continue
			}
			if err != nil {
				fmt.Printf("[-] error reading frame: %v\n", err)
				break
			}

			switch f := frame.(type) {
			case apiframe.TxStatusReport:
				fmt.Printf("frame %d delivered: %v\n", f.FrameID, f.Status)
			case apiframe.RxPacket:
				fmt.Printf("from %v (-%d dBm): %q\n", f.Source, f.RSSI, f.Data)
			default:
				fmt.Printf("%s frame\n", apiframe.TypeName(frame.FrameType()))
			}
		}
	}
}
