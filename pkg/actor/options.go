package actor

type Option func(*Options)

type Options struct {
	Params     []interface{}
	Name       string
	Mailbox    MailboxProducer
	Dispatcher IDispatcher
}

func loadOptions(options ...Option) *Options {
	opts := &Options{}
	for _, option := range options {
		option(opts)
	}
	if opts.Mailbox == nil {
		opts.Mailbox = func() IMailbox { return NewDefaultMailbox() }
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewGoroutineDispatcher(defaultThroughput)
	}
	return opts
}

// WithParams OnInit 的初始化参数
func WithParams(params ...interface{}) Option {
	return func(op *Options) {
		op.Params = params
	}
}

// WithName 注册进程名字
func WithName(name string) Option {
	return func(op *Options) {
		op.Name = name
	}
}

// WithMailbox 指定邮箱实现
func WithMailbox(producer MailboxProducer) Option {
	return func(op *Options) {
		op.Mailbox = producer
	}
}

// WithDispatcher 指定调度器
func WithDispatcher(dispatcher IDispatcher) Option {
	return func(op *Options) {
		op.Dispatcher = dispatcher
	}
}
