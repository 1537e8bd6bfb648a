package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/eeprom"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/hat"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/i2c"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/imagefile"
	"github.com/OpenTraceLab/OpenTraceEEPROM/pkg/nvm"
)

var shellCmd = &cobra.Command{
	Use:   "shell [-- command args...]",
	Short: "Interactive EEPROM session",
	Long: `Open an adapter and start an interactive shell. The image buffer is shared
between commands, so it can be read once and then dumped, decoded or saved.

Shell commands:
  info              adapter information
  read [N]          read N bytes (default 4096) into the buffer
  load FILE         load the buffer from a file
  dump              hex dump of the buffer
  atoms             decode the buffer as a HAT image
  save FILE         save the buffer
  write             write the buffer to the device
  nvm HEX           decode an NVM user page word

Arguments after -- are run as a single command without entering the shell.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	addAdapterFlags(shellCmd)
}

const sessionKey = "$session"

// session is the state shared by shell commands.
type session struct {
	adapter i2c.Adapter
	mem     *eeprom.Memory
	image   []byte
	out     io.Writer
}

func newSession(adapter i2c.Adapter, addr uint16, out io.Writer) *session {
	return &session{
		adapter: adapter,
		mem:     eeprom.New(adapter, addr, eeprom.WithBlockSize(blockSize)),
		out:     out,
	}
}

var shellCmds = []*ishell.Cmd{
	{Name: "info", Help: "adapter information", Func: sessionFunc((*session).info)},
	{Name: "read", Help: "[N]", Func: sessionFunc((*session).read)},
	{Name: "load", Help: "FILE", Func: sessionFunc((*session).load)},
	{Name: "dump", Help: "hex dump of the buffer", Func: sessionFunc((*session).dump)},
	{Name: "atoms", Aliases: []string{"decode"}, Help: "decode the buffer", Func: sessionFunc((*session).atoms)},
	{Name: "save", Help: "FILE", Func: sessionFunc((*session).save)},
	{Name: "write", Help: "write the buffer to the device", Func: sessionFunc((*session).write)},
	{Name: "nvm", Help: "HEX", Func: sessionFunc((*session).nvm)},
}

func sessionFunc(fn func(*session, []string) error) func(*ishell.Context) {
	return func(c *ishell.Context) {
		s := c.Get(sessionKey).(*session)
		if err := fn(s, c.Args); err != nil {
			c.Err(err)
		}
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	adapter, addr, err := openDevice()
	if err != nil {
		return err
	}
	defer adapter.Close()

	sh := ishell.New()
	sh.Set(sessionKey, newSession(adapter, addr, os.Stdout))
	sh.SetPrompt(fmt.Sprintf("[%s 0x%02X] > ", adapterType, addr))
	for _, c := range shellCmds {
		sh.AddCmd(c)
	}

	if len(args) > 0 {
		return sh.Process(args...)
	}
	sh.Println("HAT EEPROM shell, type 'help' for commands")
	sh.Run()
	return nil
}

func (s *session) info(args []string) error {
	info, err := s.adapter.Info()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Name: %s\nVendor: %s\nModel: %s\n", info.Name, info.Vendor, info.Model)
	if info.SerialNumber != "" {
		fmt.Fprintf(s.out, "Serial: %s\n", info.SerialNumber)
	}
	if info.Notes != "" {
		fmt.Fprintf(s.out, "Notes: %s\n", info.Notes)
	}
	return nil
}

func (s *session) read(args []string) error {
	count := 4096
	if len(args) > 0 {
		n, err := strconv.ParseInt(args[0], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid byte count %q", args[0])
		}
		count = int(n)
	}
	data, err := s.mem.Read(count)
	if err != nil {
		return err
	}
	s.image = data
	fmt.Fprintf(s.out, "read %d bytes\n", len(data))
	return nil
}

func (s *session) load(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load FILE")
	}
	data, err := imagefile.Load(args[0])
	if err != nil {
		return err
	}
	s.image = data
	fmt.Fprintf(s.out, "loaded %d bytes\n", len(data))
	return nil
}

func (s *session) requireImage() error {
	if s.image == nil {
		return fmt.Errorf("buffer is empty, use read or load first")
	}
	return nil
}

func (s *session) dump(args []string) error {
	if err := s.requireImage(); err != nil {
		return err
	}
	writeHexDump(s.out, s.image)
	return nil
}

func (s *session) atoms(args []string) error {
	if err := s.requireImage(); err != nil {
		return err
	}
	img, err := hat.Decode(s.image)
	if err != nil {
		return err
	}
	writeImageReport(s.out, img)
	return nil
}

func (s *session) save(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save FILE")
	}
	if err := s.requireImage(); err != nil {
		return err
	}
	if err := imagefile.Save(args[0], s.image); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %d bytes to %s\n", len(s.image), args[0])
	return nil
}

func (s *session) write(args []string) error {
	if err := s.requireImage(); err != nil {
		return err
	}
	if err := s.mem.Write(s.image); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "wrote %d bytes\n", len(s.image))
	return nil
}

func (s *session) nvm(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: nvm HEX")
	}
	buf, err := nvm.ParseHex(args[0])
	if err != nil {
		return err
	}
	values, err := nvm.Decode(buf, nvm.UserPage)
	if err != nil {
		return err
	}
	writeNVMTable(s.out, values)
	return nil
}
